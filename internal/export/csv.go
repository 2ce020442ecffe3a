// Package export writes the enriched world-cities table to its destinations.
package export

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/world-cities/internal/model"
)

// WriteCSV writes rows to path with a model.OutputColumns header, replacing
// any existing file. Missing parent directories are created.
func WriteCSV(path string, rows []model.OutputRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}

	if err := EncodeCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// EncodeCSV writes the header and rows to w with "\n" line endings.
func EncodeCSV(w io.Writer, rows []model.OutputRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.OutputColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return eris.Wrapf(err, "export: write row %d", r.GeonameID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// RemoveTemp deletes the given files. Files that are already gone are not an
// error.
func RemoveTemp(paths ...string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return eris.Wrapf(err, "export: remove %s", p)
		}
	}
	return nil
}
