// Package model defines the records that flow through the world-cities build.
package model

import "time"

// CityColumns is the GeoNames "geoname" table layout, in dump order.
var CityColumns = []string{
	"geonameid",
	"name",
	"asciiname",
	"alternatenames",
	"latitude",
	"longitude",
	"feature class",
	"feature code",
	"country code",
	"cc2",
	"admin1 code",
	"admin2 code",
	"admin3 code",
	"admin4 code",
	"population",
	"elevation",
	"dem",
	"timezone",
	"modification date",
}

// Column positions within a dump line.
const (
	ColGeonameID = iota
	ColName
	ColASCIIName
	ColAlternateNames
	ColLatitude
	ColLongitude
	ColFeatureClass
	ColFeatureCode
	ColCountryCode
	ColCC2
	ColAdmin1Code
	ColAdmin2Code
	ColAdmin3Code
	ColAdmin4Code
	ColPopulation
	ColElevation
	ColDEM
	ColTimezone
	ColModificationDate

	CityFieldCount
)

// City is one row of the GeoNames cities dump.
type City struct {
	GeonameID      int64     `json:"geonameid"`
	Name           string    `json:"name"`
	ASCIIName      string    `json:"asciiname"`
	AlternateNames []string  `json:"alternatenames,omitempty"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	FeatureClass   string    `json:"feature_class"`
	FeatureCode    string    `json:"feature_code"`
	CountryCode    string    `json:"country_code"`
	CC2            []string  `json:"cc2,omitempty"`
	Admin1Code     string    `json:"admin1_code"`
	Admin2Code     string    `json:"admin2_code,omitempty"`
	Admin3Code     string    `json:"admin3_code,omitempty"`
	Admin4Code     string    `json:"admin4_code,omitempty"`
	Population     int64     `json:"population"`
	Elevation      *int      `json:"elevation,omitempty"` // nil when the dump leaves it blank
	DEM            int       `json:"dem"`
	Timezone       string    `json:"timezone"`
	ModifiedAt     time.Time `json:"modification_date"`

	Raw []string `json:"-"` // the split dump fields, in CityColumns order
}

// Seed is the narrowed projection of a City that enrichment works from.
// Admin1Code is the raw subdivision code; it is only a join key and never
// appears in the output.
type Seed struct {
	Name        string
	CountryCode string
	Admin1Code  string
	GeonameID   int64
	Timezone    string
}

// Seed projects c onto the fields needed for enrichment.
func (c City) Seed() Seed {
	return Seed{
		Name:        c.Name,
		CountryCode: c.CountryCode,
		Admin1Code:  c.Admin1Code,
		GeonameID:   c.GeonameID,
		Timezone:    c.Timezone,
	}
}
