package export

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/world-cities/internal/model"
)

// XLSXSheet is the name of the worksheet holding the table.
const XLSXSheet = "world-cities"

// XLSXExporter writes the table as a single-sheet workbook.
type XLSXExporter struct {
	path string
}

// NewXLSXExporter returns an exporter writing to path.
func NewXLSXExporter(path string) *XLSXExporter {
	return &XLSXExporter{path: path}
}

// Name implements Exporter.
func (e *XLSXExporter) Name() string { return "xlsx:" + e.path }

// Export writes a header row and one row per city, overwriting the file.
func (e *XLSXExporter) Export(ctx context.Context, rows []model.OutputRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(XLSXSheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.OutputColumns {
		header.AddCell().SetString(col)
	}

	for i, r := range rows {
		if i%10000 == 0 && ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		row := sheet.AddRow()
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.Country)
		row.AddCell().SetString(r.SubcountryOrEmpty())
		row.AddCell().SetInt64(r.GeonameID)
		row.AddCell().SetString(r.Timezone)
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return eris.Wrapf(err, "xlsx: create dir for %s", e.path)
	}
	if err := f.Save(e.path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", e.path)
	}
	return nil
}
