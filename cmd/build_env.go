package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/world-cities/internal/config"
	"github.com/sells-group/world-cities/internal/db"
	"github.com/sells-group/world-cities/internal/enrich"
	"github.com/sells-group/world-cities/internal/export"
	"github.com/sells-group/world-cities/internal/fetcher"
	"github.com/sells-group/world-cities/internal/pipeline"
)

// buildEnv holds the pipeline and the resources it borrows.
type buildEnv struct {
	Pipeline  *pipeline.Pipeline
	Exporters []export.Exporter
	pool      *pgxpool.Pool
}

// Close releases resources held by the build environment.
func (e *buildEnv) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

func pipelineConfig(c *config.Config) pipeline.Config {
	return pipeline.Config{
		CitiesURL:   c.Source.CitiesURL,
		CitiesEntry: c.Source.CitiesEntry,
		Admin1URL:   c.Source.Admin1URL,
		WorkDir:     c.Output.WorkDir,
		OutputPath:  c.Output.Path,
		KeepTemp:    c.Output.KeepTemp,
	}
}

func newFetcher(c *config.Config) fetcher.Fetcher {
	timeout := time.Duration(c.Fetch.TimeoutSecs) * time.Second
	httpF := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         c.Fetch.UserAgent,
		Timeout:           timeout,
		RequestsPerSecond: c.Fetch.RequestsPerSecond,
		Progress:          c.Fetch.Progress,
	})
	ftpF := fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: timeout})
	return fetcher.NewRouter(httpF, ftpF)
}

// initBuild wires the fetcher, exporters and pipeline. Callers should defer
// env.Close().
func initBuild(ctx context.Context, c *config.Config) (*buildEnv, error) {
	env := &buildEnv{}

	if c.Output.SQLitePath != "" {
		env.Exporters = append(env.Exporters, export.NewSQLiteExporter(c.Output.SQLitePath))
	}
	if c.Output.XLSXPath != "" {
		env.Exporters = append(env.Exporters, export.NewXLSXExporter(c.Output.XLSXPath))
	}
	if c.Output.PostgresURL != "" {
		pool, err := db.Connect(ctx, c.Output.PostgresURL)
		if err != nil {
			return nil, eris.Wrap(err, "build: connect postgres")
		}
		env.pool = pool
		env.Exporters = append(env.Exporters, export.NewPostgresExporter(pool, c.Output.PostgresTable))
	}

	env.Pipeline = pipeline.New(pipelineConfig(c), newFetcher(c), enrich.NewCountryResolver(), env.Exporters...)
	return env, nil
}
