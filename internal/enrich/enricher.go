package enrich

import (
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/model"
)

// Stats summarizes one Enrich call.
type Stats struct {
	Rows                   int
	UnresolvedCountries    int
	UnresolvedSubdivisions int
}

// Enricher turns seeds into output rows.
type Enricher struct {
	countries    *CountryResolver
	subdivisions *SubdivisionIndex
}

// New returns an Enricher over the given resolvers.
func New(countries *CountryResolver, subdivisions *SubdivisionIndex) *Enricher {
	return &Enricher{countries: countries, subdivisions: subdivisions}
}

// Enrich resolves every seed in order. Unknown countries carry the lookup
// failure message; unknown subdivisions are left nil.
func (e *Enricher) Enrich(seeds []model.Seed) ([]model.OutputRow, Stats) {
	log := zap.L().With(zap.String("component", "enrich"))

	rows := make([]model.OutputRow, len(seeds))
	stats := Stats{Rows: len(seeds)}
	unknown := make(map[string]struct{})

	for i, s := range seeds {
		country, err := e.countries.Resolve(s.CountryCode)
		if err != nil {
			country = err.Error()
			stats.UnresolvedCountries++
			if _, seen := unknown[s.CountryCode]; !seen {
				unknown[s.CountryCode] = struct{}{}
				log.Warn("unresolved country code", zap.String("code", s.CountryCode))
			}
		}

		row := model.OutputRow{
			Name:      s.Name,
			Country:   country,
			GeonameID: s.GeonameID,
			Timezone:  s.Timezone,
		}
		if name, ok := e.subdivisions.Lookup(s.CountryCode, s.Admin1Code); ok {
			row.Subcountry = &name
		} else {
			stats.UnresolvedSubdivisions++
		}
		rows[i] = row
	}

	return rows, stats
}
