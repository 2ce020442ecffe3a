package enrich

import "github.com/sells-group/world-cities/internal/model"

type subdivisionKey struct {
	country string
	code    string
}

// SubdivisionIndex answers (country, admin1 code) lookups against the admin1
// reference table.
type SubdivisionIndex struct {
	names map[subdivisionKey]string
}

// NewSubdivisionIndex indexes rows by (country, code). When keys repeat, the
// earliest row wins.
func NewSubdivisionIndex(rows []model.Subdivision) *SubdivisionIndex {
	idx := &SubdivisionIndex{names: make(map[subdivisionKey]string, len(rows))}
	for _, r := range rows {
		k := subdivisionKey{country: r.CountryCode, code: r.Code}
		if _, ok := idx.names[k]; ok {
			continue
		}
		idx.names[k] = r.ASCIIName
	}
	return idx
}

// Lookup returns the ASCII name of the subdivision. Matching is exact and
// case-sensitive.
func (s *SubdivisionIndex) Lookup(countryCode, admin1Code string) (string, bool) {
	name, ok := s.names[subdivisionKey{country: countryCode, code: admin1Code}]
	return name, ok
}

// Len returns the number of distinct keys.
func (s *SubdivisionIndex) Len() int {
	return len(s.names)
}
