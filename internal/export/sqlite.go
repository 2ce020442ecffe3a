package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/world-cities/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS world_cities (
	name       TEXT NOT NULL,
	country    TEXT NOT NULL,
	subcountry TEXT,
	geonameid  INTEGER NOT NULL,
	timezone   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_world_cities_country ON world_cities(country);
`

// SQLiteExporter writes the table into a SQLite database file.
type SQLiteExporter struct {
	path string
}

// NewSQLiteExporter returns an exporter targeting the database at path.
func NewSQLiteExporter(path string) *SQLiteExporter {
	return &SQLiteExporter{path: path}
}

// Name implements Exporter.
func (e *SQLiteExporter) Name() string { return "sqlite:" + e.path }

// Export clears world_cities and inserts rows in one transaction.
func (e *SQLiteExporter) Export(ctx context.Context, rows []model.OutputRow) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return eris.Wrapf(err, "sqlite: create dir for %s", e.path)
	}

	db, err := sql.Open("sqlite", e.path)
	if err != nil {
		return eris.Wrap(err, "sqlite: open")
	}
	defer db.Close() //nolint:errcheck

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return eris.Wrap(err, "sqlite: set busy timeout")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM world_cities"); err != nil {
		return eris.Wrap(err, "sqlite: clear world_cities")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO world_cities (name, country, subcountry, geonameid, timezone) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Name, r.Country, nullable(r.Subcountry), r.GeonameID, r.Timezone); err != nil {
			return eris.Wrapf(err, "sqlite: insert %d", r.GeonameID)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}

	zap.L().Debug("sqlite: exported", zap.String("path", e.path), zap.Int("rows", len(rows)))
	return nil
}
