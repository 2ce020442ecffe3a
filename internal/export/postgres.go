package export

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/db"
	"github.com/sells-group/world-cities/internal/model"
)

// PostgresExporter replaces a Postgres table with the output rows.
type PostgresExporter struct {
	pool db.Pool
	spec db.TableSpec
}

// NewPostgresExporter returns an exporter loading into table through pool.
func NewPostgresExporter(pool db.Pool, table string) *PostgresExporter {
	return &PostgresExporter{
		pool: pool,
		spec: db.TableSpec{
			Table: table,
			Columns: []db.Column{
				{Name: "name", Type: "TEXT NOT NULL"},
				{Name: "country", Type: "TEXT NOT NULL"},
				{Name: "subcountry", Type: "TEXT"},
				{Name: "geonameid", Type: "BIGINT NOT NULL"},
				{Name: "timezone", Type: "TEXT NOT NULL"},
			},
		},
	}
}

// Name implements Exporter.
func (e *PostgresExporter) Name() string { return "postgres:" + e.spec.Table }

// Export truncates the table and copies rows in, in one transaction.
func (e *PostgresExporter) Export(ctx context.Context, rows []model.OutputRow) error {
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = []any{r.Name, r.Country, nullable(r.Subcountry), r.GeonameID, r.Timezone}
	}

	n, err := db.ReplaceTable(ctx, e.pool, e.spec, values)
	if err != nil {
		return eris.Wrap(err, "postgres: export")
	}

	zap.L().Debug("postgres: exported", zap.String("table", e.spec.Table), zap.Int64("rows", n))
	return nil
}
