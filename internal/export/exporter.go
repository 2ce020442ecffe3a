package export

import (
	"context"

	"github.com/sells-group/world-cities/internal/model"
)

// Exporter writes a secondary copy of the output table. Each Export fully
// replaces what a previous run wrote.
type Exporter interface {
	Name() string
	Export(ctx context.Context, rows []model.OutputRow) error
}

// nullable returns the subcountry as a value a database driver maps to NULL
// when absent.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
