// Package enrich resolves country and subdivision names for city seeds.
package enrich

import (
	"strings"

	"golang.org/x/text/language"
)

// LookupError reports a country code with no entry in the ISO 3166-1 table.
type LookupError struct {
	Code string
}

func (e *LookupError) Error() string {
	return "No country found for alpha-2 code: " + e.Code
}

// CountryResolver maps ISO 3166-1 alpha-2 codes to their English short
// names. Codes are validated with golang.org/x/text before the table lookup.
type CountryResolver struct {
	names map[string]string
}

// NewCountryResolver returns a resolver backed by the ISO 3166-1 table.
func NewCountryResolver() *CountryResolver {
	return &CountryResolver{names: isoShortNames}
}

// Resolve returns the country name for code. Input is case-insensitive.
func (r *CountryResolver) Resolve(code string) (string, error) {
	if len(code) != 2 || !isASCIILetters(code) {
		return "", &LookupError{Code: code}
	}

	region, err := language.ParseRegion(code)
	if err != nil {
		return "", &LookupError{Code: code}
	}
	// ParseRegion canonicalizes deprecated codes (e.g. "UK"); only exact
	// matches count.
	if region.String() != strings.ToUpper(code) {
		return "", &LookupError{Code: code}
	}

	name, ok := r.names[region.String()]
	if !ok {
		return "", &LookupError{Code: code}
	}
	return name, nil
}

// Name returns the resolved name, or the lookup failure's message in its
// place. The result is never empty.
func (r *CountryResolver) Name(code string) string {
	name, err := r.Resolve(code)
	if err != nil {
		return err.Error()
	}
	return name
}

func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
