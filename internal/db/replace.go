package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Column is one column of a table managed by ReplaceTable.
type Column struct {
	Name string
	Type string // SQL type, e.g. "TEXT NOT NULL"
}

// TableSpec describes a table whose contents are replaced wholesale.
type TableSpec struct {
	Table   string // optionally schema-qualified
	Columns []Column
}

func (s TableSpec) columnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// CreateSQL returns the CREATE TABLE IF NOT EXISTS statement for s.
func (s TableSpec) CreateSQL() string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + c.Type
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", identifier(s.Table).Sanitize(), strings.Join(defs, ", "))
}

// ReplaceTable creates the table if needed, truncates it and copies rows in,
// all inside one transaction. Readers never see a half-loaded table.
func ReplaceTable(ctx context.Context, pool Pool, spec TableSpec, rows [][]any) (int64, error) {
	if len(spec.Columns) == 0 {
		return 0, eris.New("db: replace: no columns specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, spec.CreateSQL()); err != nil {
		return 0, eris.Wrapf(err, "db: replace: create %s", spec.Table)
	}

	if _, err := tx.Exec(ctx, "TRUNCATE "+identifier(spec.Table).Sanitize()); err != nil {
		return 0, eris.Wrapf(err, "db: replace: truncate %s", spec.Table)
	}

	n, err := CopyFrom(ctx, tx, spec.Table, spec.columnNames(), rows)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit")
	}
	return n, nil
}
