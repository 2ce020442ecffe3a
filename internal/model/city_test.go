package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCityColumnsMatchFieldPositions(t *testing.T) {
	t.Parallel()

	assert.Len(t, CityColumns, CityFieldCount)
	assert.Equal(t, "geonameid", CityColumns[ColGeonameID])
	assert.Equal(t, "country code", CityColumns[ColCountryCode])
	assert.Equal(t, "admin1 code", CityColumns[ColAdmin1Code])
	assert.Equal(t, "timezone", CityColumns[ColTimezone])
	assert.Equal(t, "modification date", CityColumns[ColModificationDate])
}

func TestCitySeed(t *testing.T) {
	t.Parallel()

	c := City{
		GeonameID:   5368361,
		Name:        "Los Angeles",
		ASCIIName:   "Los Angeles",
		CountryCode: "US",
		Admin1Code:  "CA",
		Admin2Code:  "037",
		Population:  3971883,
		Timezone:    "America/Los_Angeles",
	}

	assert.Equal(t, Seed{
		Name:        "Los Angeles",
		CountryCode: "US",
		Admin1Code:  "CA",
		GeonameID:   5368361,
		Timezone:    "America/Los_Angeles",
	}, c.Seed())
}

func TestOutputRowRecord(t *testing.T) {
	t.Parallel()

	california := "California"
	tests := []struct {
		name string
		row  OutputRow
		want []string
	}{
		{
			name: "resolved subdivision",
			row: OutputRow{
				Name:       "Los Angeles",
				Country:    "United States",
				Subcountry: &california,
				GeonameID:  5368361,
				Timezone:   "America/Los_Angeles",
			},
			want: []string{"Los Angeles", "United States", "California", "5368361", "America/Los_Angeles"},
		},
		{
			name: "missing subdivision",
			row: OutputRow{
				Name:      "Monaco",
				Country:   "Monaco",
				GeonameID: 2993458,
				Timezone:  "Europe/Monaco",
			},
			want: []string{"Monaco", "Monaco", "", "2993458", "Europe/Monaco"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.row.Record()
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(OutputColumns))
		})
	}
}
