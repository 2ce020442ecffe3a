package model

import "strconv"

// SubdivisionColumns is the layout of admin1CodesASCII.txt. The file has no
// header row.
var SubdivisionColumns = []string{"code", "name", "asciiname", "geonameid"}

// Subdivision is one row of the first-level administrative division table.
// The source "code" column ("US.CA") is split into CountryCode and Code.
type Subdivision struct {
	CountryCode string `json:"code"`
	Code        string `json:"subcode"`
	Name        string `json:"name"`
	ASCIIName   string `json:"asciiname"`
	GeonameID   int64  `json:"geonameid"`
}

// OutputColumns is the header of the published world-cities table.
var OutputColumns = []string{"name", "country", "subcountry", "geonameid", "timezone"}

// OutputRow is one enriched city in the published table.
type OutputRow struct {
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	Subcountry *string `json:"subcountry,omitempty"` // nil when no subdivision matched
	GeonameID  int64   `json:"geonameid"`
	Timezone   string  `json:"timezone"`
}

// SubcountryOrEmpty returns the resolved subdivision name, or "" when absent.
func (r OutputRow) SubcountryOrEmpty() string {
	if r.Subcountry == nil {
		return ""
	}
	return *r.Subcountry
}

// Record renders r as string fields in OutputColumns order.
func (r OutputRow) Record() []string {
	return []string{
		r.Name,
		r.Country,
		r.SubcountryOrEmpty(),
		strconv.FormatInt(r.GeonameID, 10),
		r.Timezone,
	}
}
