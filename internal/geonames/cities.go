// Package geonames parses the GeoNames cities dump and the admin1 reference
// table into model records.
package geonames

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/model"
)

const (
	dateLayout = "2006-01-02"
	// Lines carry the full alternate-names list and can run long.
	maxLineBytes = 4 << 20
)

// CityTable is a parsed cities dump.
type CityTable struct {
	Cities  []model.City
	Skipped int // malformed lines dropped
}

// ParseCity parses one tab-separated dump line. Only a trailing "\r\n" is
// removed; empty fields are kept in place.
func ParseCity(line string) (model.City, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, "\t")
	if len(fields) != model.CityFieldCount {
		return model.City{}, &MalformedRowError{
			Fields: len(fields),
			Reason: "expected " + strconv.Itoa(model.CityFieldCount) + " tab-separated fields",
		}
	}

	id, err := strconv.ParseInt(fields[model.ColGeonameID], 10, 64)
	if err != nil {
		return model.City{}, &MalformedRowError{Fields: len(fields), Reason: "invalid geonameid " + strconv.Quote(fields[model.ColGeonameID])}
	}
	lat, err := strconv.ParseFloat(fields[model.ColLatitude], 64)
	if err != nil {
		return model.City{}, &MalformedRowError{Fields: len(fields), Reason: "invalid latitude " + strconv.Quote(fields[model.ColLatitude])}
	}
	lon, err := strconv.ParseFloat(fields[model.ColLongitude], 64)
	if err != nil {
		return model.City{}, &MalformedRowError{Fields: len(fields), Reason: "invalid longitude " + strconv.Quote(fields[model.ColLongitude])}
	}

	c := model.City{
		GeonameID:      id,
		Name:           fields[model.ColName],
		ASCIIName:      fields[model.ColASCIIName],
		AlternateNames: splitList(fields[model.ColAlternateNames]),
		Latitude:       lat,
		Longitude:      lon,
		FeatureClass:   fields[model.ColFeatureClass],
		FeatureCode:    fields[model.ColFeatureCode],
		CountryCode:    fields[model.ColCountryCode],
		CC2:            splitList(fields[model.ColCC2]),
		Admin1Code:     fields[model.ColAdmin1Code],
		Admin2Code:     fields[model.ColAdmin2Code],
		Admin3Code:     fields[model.ColAdmin3Code],
		Admin4Code:     fields[model.ColAdmin4Code],
		Population:     parseInt64(fields[model.ColPopulation]),
		Elevation:      parseOptionalInt(fields[model.ColElevation]),
		DEM:            int(parseInt64(fields[model.ColDEM])),
		Timezone:       fields[model.ColTimezone],
		Raw:            fields,
	}
	if t, err := time.Parse(dateLayout, fields[model.ColModificationDate]); err == nil {
		c.ModifiedAt = t
	}
	return c, nil
}

// ParseCities reads a whole dump. Blank lines are ignored; malformed lines
// are logged, counted and skipped. Read errors abort.
func ParseCities(r io.Reader) (CityTable, error) {
	log := zap.L().With(zap.String("component", "geonames"))

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var table CityTable
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == "" {
			continue
		}

		c, err := ParseCity(line)
		if err != nil {
			var mre *MalformedRowError
			if !errors.As(err, &mre) {
				return CityTable{}, err
			}
			mre.Line = lineNo
			log.Warn("skipping malformed city line",
				zap.Int("line", lineNo),
				zap.Int("fields", mre.Fields),
				zap.String("reason", mre.Reason),
			)
			table.Skipped++
			continue
		}
		table.Cities = append(table.Cities, c)
	}
	if err := sc.Err(); err != nil {
		return CityTable{}, eris.Wrapf(err, "geonames: read cities at line %d", lineNo+1)
	}

	return table, nil
}

// WriteCityTable writes the full-schema table: a header of
// model.CityColumns and each city's raw fields.
func WriteCityTable(w io.Writer, cities []model.City) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.CityColumns); err != nil {
		return eris.Wrap(err, "geonames: write city header")
	}
	for _, c := range cities {
		if err := cw.Write(c.Raw); err != nil {
			return eris.Wrapf(err, "geonames: write city %d", c.GeonameID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "geonames: flush city table")
}

// Project narrows cities to the fields enrichment needs, keeping order.
func Project(cities []model.City) []model.Seed {
	seeds := make([]model.Seed, len(cities))
	for i, c := range cities {
		seeds[i] = c.Seed()
	}
	return seeds
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseOptionalInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
