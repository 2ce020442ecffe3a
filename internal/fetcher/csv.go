package fetcher

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the delimited-text reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
}

// TSV is the layout of GeoNames reference tables: tab separated, no header,
// quotes taken literally.
var TSV = CSVOptions{Delimiter: '\t', LazyQuotes: true}

// ReadCSV reads every row of r. Rows may have differing field counts; the
// caller applies its own schema.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([][]string, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		rows = append(rows, record)
	}
}

// FetchTable downloads url and reads it as delimited text.
func FetchTable(ctx context.Context, f Fetcher, url string, opts CSVOptions) ([][]string, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	rows, err := ReadCSV(ctx, body, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: table %s", url)
	}
	return rows, nil
}
