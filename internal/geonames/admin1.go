package geonames

import (
	"strconv"
	"strings"

	"github.com/sells-group/world-cities/internal/model"
)

// ParseSubdivisions applies model.SubdivisionColumns to raw admin1 rows.
// The code column "US.CA" is split at the first '.' into country and
// subdivision code. Blank rows are skipped; any other row that does not fit
// is a *MalformedReferenceError.
func ParseSubdivisions(rows [][]string) ([]model.Subdivision, error) {
	subs := make([]model.Subdivision, 0, len(rows))
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if len(row) < len(model.SubdivisionColumns) {
			return nil, &MalformedReferenceError{
				Row:    i + 1,
				Reason: "expected " + strconv.Itoa(len(model.SubdivisionColumns)) + " fields, got " + strconv.Itoa(len(row)),
			}
		}

		country, code, ok := strings.Cut(row[0], ".")
		if !ok {
			return nil, &MalformedReferenceError{Row: i + 1, Reason: "code " + strconv.Quote(row[0]) + " has no '.' separator"}
		}

		id, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, &MalformedReferenceError{Row: i + 1, Reason: "invalid geonameid " + strconv.Quote(row[3])}
		}

		subs = append(subs, model.Subdivision{
			CountryCode: country,
			Code:        code,
			Name:        row[1],
			ASCIIName:   row[2],
			GeonameID:   id,
		})
	}
	return subs, nil
}

func isBlank(row []string) bool {
	return len(row) == 0 || (len(row) == 1 && row[0] == "")
}
