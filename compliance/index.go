package compliance

import "strings"

// Index holds country corruption-perception scores (100 = clean) and
// company ESG scores.
type Index struct {
	countries map[string]float64
	companies map[string]float64
}

func NewIndex(countryCPI, companyESG map[string]float64) *Index {
	ix := &Index{
		countries: make(map[string]float64, len(countryCPI)),
		companies: make(map[string]float64, len(companyESG)),
	}
	for k, v := range countryCPI {
		ix.countries[key(k)] = v
	}
	for k, v := range companyESG {
		ix.companies[key(k)] = v
	}
	return ix
}

// DefaultIndex is a small built-in reference table.
func DefaultIndex() *Index {
	return NewIndex(
		map[string]float64{
			"Norway":    84,
			"Denmark":   90,
			"USA":       69,
			"Germany":   79,
			"COUNTRY_X": 15,
		},
		map[string]float64{
			"AAPL":        75,
			"EQNR.OL":     82,
			"COAL_CORP":   12,
			"WEAPONS_INC": 20,
		},
	)
}

// CorruptionIndex converts the country's perception score to the
// higher-is-more-corrupt convention.
func (ix *Index) CorruptionIndex(country string) (float64, bool) {
	cpi, ok := ix.countries[key(country)]
	if !ok {
		return 0, false
	}
	return 100 - cpi, true
}

func (ix *Index) ESG(company string) (float64, bool) {
	v, ok := ix.companies[key(company)]
	return v, ok
}

func key(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
