// Package pipeline runs the world-cities build: fetch, reshape, enrich,
// write.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/enrich"
	"github.com/sells-group/world-cities/internal/export"
	"github.com/sells-group/world-cities/internal/fetcher"
	"github.com/sells-group/world-cities/internal/geonames"
	"github.com/sells-group/world-cities/internal/model"
)

// Config holds the inputs and outputs of one build.
type Config struct {
	CitiesURL   string
	CitiesEntry string // file name inside the cities archive
	Admin1URL   string
	WorkDir     string // where temporary files go
	OutputPath  string
	KeepTemp    bool
}

// Stage records how long one step of a build took.
type Stage struct {
	Name     string
	Duration time.Duration
}

// Result summarizes a completed build.
type Result struct {
	RunID                  uuid.UUID
	Cities                 int
	Skipped                int
	Subdivisions           int
	UnresolvedCountries    int
	UnresolvedSubdivisions int
	OutputPath             string
	TempFiles              []string
	Exports                []string
	Stages                 []Stage
	Elapsed                time.Duration
}

// Pipeline runs builds. It keeps no state between runs.
type Pipeline struct {
	cfg       Config
	fetcher   fetcher.Fetcher
	countries *enrich.CountryResolver
	exporters []export.Exporter
}

// New creates a Pipeline. Exporters run after the CSV is written, in order.
func New(cfg Config, f fetcher.Fetcher, countries *enrich.CountryResolver, exporters ...export.Exporter) *Pipeline {
	if countries == nil {
		countries = enrich.NewCountryResolver()
	}
	return &Pipeline{
		cfg:       cfg,
		fetcher:   f,
		countries: countries,
		exporters: exporters,
	}
}

// TempPaths returns the extracted dump and the intermediate CSV paths.
func (c Config) TempPaths() (txt, csv string) {
	txt = filepath.Join(c.WorkDir, c.CitiesEntry)
	csv = strings.TrimSuffix(txt, filepath.Ext(txt)) + ".csv"
	if csv == txt {
		csv = txt + ".csv"
	}
	return txt, csv
}

// Run executes one build. On error, temporary files are left in place and
// the output may be partially written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:      uuid.New(),
		OutputPath: p.cfg.OutputPath,
	}
	log := zap.L().With(
		zap.String("component", "pipeline"),
		zap.String("run_id", result.RunID.String()),
	)
	log.Info("pipeline: starting build", zap.String("cities_url", p.cfg.CitiesURL))

	stage := func(name string, fn func() error) error {
		t := time.Now()
		if err := fn(); err != nil {
			log.Error("pipeline: stage failed", zap.String("stage", name), zap.Error(err))
			return eris.Wrapf(err, "pipeline: %s", name)
		}
		d := time.Since(t)
		result.Stages = append(result.Stages, Stage{Name: name, Duration: d})
		log.Info("pipeline: stage complete", zap.String("stage", name), zap.Int64("duration_ms", d.Milliseconds()))
		return nil
	}

	txtPath, csvPath := p.cfg.TempPaths()
	result.TempFiles = []string{txtPath, csvPath}

	if err := stage("fetch cities", func() error {
		if err := os.MkdirAll(p.cfg.WorkDir, 0o755); err != nil {
			return eris.Wrapf(err, "create work dir %s", p.cfg.WorkDir)
		}
		path, err := fetcher.FetchZIPEntry(ctx, p.fetcher, p.cfg.CitiesURL, p.cfg.CitiesEntry, p.cfg.WorkDir)
		if err != nil {
			return err
		}
		txtPath = path
		return nil
	}); err != nil {
		return nil, err
	}

	var seeds []model.Seed
	if err := stage("reshape", func() error {
		table, err := readCities(txtPath)
		if err != nil {
			return err
		}
		if err := writeCityTable(csvPath, table.Cities); err != nil {
			return err
		}
		result.Cities = len(table.Cities)
		result.Skipped = table.Skipped
		seeds = geonames.Project(table.Cities)
		return nil
	}); err != nil {
		return nil, err
	}

	var rows []model.OutputRow
	if err := stage("enrich", func() error {
		raw, err := fetcher.FetchTable(ctx, p.fetcher, p.cfg.Admin1URL, fetcher.TSV)
		if err != nil {
			return err
		}
		subs, err := geonames.ParseSubdivisions(raw)
		if err != nil {
			return err
		}
		result.Subdivisions = len(subs)

		idx := enrich.NewSubdivisionIndex(subs)
		log.Debug("pipeline: subdivision index built",
			zap.Int("rows", len(subs)),
			zap.Int("keys", idx.Len()),
		)

		var stats enrich.Stats
		rows, stats = enrich.New(p.countries, idx).Enrich(seeds)
		result.UnresolvedCountries = stats.UnresolvedCountries
		result.UnresolvedSubdivisions = stats.UnresolvedSubdivisions
		return nil
	}); err != nil {
		return nil, err
	}

	if err := stage("write", func() error {
		return export.WriteCSV(p.cfg.OutputPath, rows)
	}); err != nil {
		return nil, err
	}

	for _, e := range p.exporters {
		if err := stage("export "+e.Name(), func() error {
			return e.Export(ctx, rows)
		}); err != nil {
			return nil, err
		}
		result.Exports = append(result.Exports, e.Name())
	}

	if p.cfg.KeepTemp {
		log.Info("pipeline: keeping temporary files", zap.Strings("paths", result.TempFiles))
	} else if err := stage("cleanup", func() error {
		return export.RemoveTemp(txtPath, csvPath)
	}); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	log.Info("pipeline: build complete",
		zap.String("output", p.cfg.OutputPath),
		zap.String("cities", humanize.Comma(int64(result.Cities))),
		zap.Int("skipped", result.Skipped),
		zap.Int("unresolved_countries", result.UnresolvedCountries),
		zap.Int("unresolved_subdivisions", result.UnresolvedSubdivisions),
		zap.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func readCities(path string) (geonames.CityTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return geonames.CityTable{}, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	if info, err := f.Stat(); err == nil {
		zap.L().Debug("pipeline: reading dump",
			zap.String("path", path),
			zap.String("size", humanize.Bytes(uint64(info.Size()))),
		)
	}
	return geonames.ParseCities(f)
}

func writeCityTable(path string, cities []model.City) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := geonames.WriteCityTable(f, cities); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}
