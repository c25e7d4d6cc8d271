// Package catalog holds the static country and indicator tables used to turn
// free text into canonical codes and canonical codes back into display metadata.
package catalog

import (
	"strings"

	"github.com/ppiankov/macrolens/internal/model"
)

// Country describes one country known to the catalog
type Country struct {
	Code     model.CountryCode `json:"code" yaml:"code"`
	Name     string            `json:"name" yaml:"name"`       // Display name used in reports
	NameEN   string            `json:"name_en" yaml:"name_en"` // Name as published by upstream sources
	Region   string            `json:"region" yaml:"region"`
	Synonyms []string          `json:"-" yaml:"synonyms"`
}

// Indicator describes one indicator known to the catalog
type Indicator struct {
	Code     model.IndicatorCode `json:"code" yaml:"code"`
	Name     string              `json:"name" yaml:"name"`
	NameEN   string              `json:"name_en" yaml:"name_en"`
	Unit     string              `json:"unit" yaml:"unit"`
	Category string              `json:"category" yaml:"category"`
	Source   string              `json:"source" yaml:"source"` // worldbank or imf
	Synonyms []string            `json:"-" yaml:"synonyms"`
}

// Catalog is an immutable pair of lookup tables. It is safe for concurrent use.
type Catalog struct {
	countries    []Country
	indicators   []Indicator
	countryIdx   map[model.CountryCode]int
	indicatorIdx map[model.IndicatorCode]int
	countrySyn   []synonym
	indicatorSyn []synonym
}

// New builds a catalog. Entry order is significant: it is the order in which
// matched codes are reported and the order used to break ranking ties.
func New(countries []Country, indicators []Indicator) *Catalog {
	c := &Catalog{
		countries:    countries,
		indicators:   indicators,
		countryIdx:   make(map[model.CountryCode]int, len(countries)),
		indicatorIdx: make(map[model.IndicatorCode]int, len(indicators)),
	}

	for i, country := range countries {
		c.countryIdx[country.Code] = i
		for _, s := range country.Synonyms {
			c.countrySyn = append(c.countrySyn, newSynonym(s, i))
		}
	}
	for i, indicator := range indicators {
		c.indicatorIdx[indicator.Code] = i
		for _, s := range indicator.Synonyms {
			c.indicatorSyn = append(c.indicatorSyn, newSynonym(s, i))
		}
	}

	sortSynonyms(c.countrySyn)
	sortSynonyms(c.indicatorSyn)

	return c
}

// Countries returns all countries in catalog order
func (c *Catalog) Countries() []Country {
	out := make([]Country, len(c.countries))
	copy(out, c.countries)
	return out
}

// Indicators returns all indicators in catalog order
func (c *Catalog) Indicators() []Indicator {
	out := make([]Indicator, len(c.indicators))
	copy(out, c.indicators)
	return out
}

// Country looks up a country by code
func (c *Catalog) Country(code model.CountryCode) (Country, bool) {
	i, ok := c.countryIdx[code]
	if !ok {
		return Country{}, false
	}
	return c.countries[i], true
}

// Indicator looks up an indicator by code
func (c *Catalog) Indicator(code model.IndicatorCode) (Indicator, bool) {
	i, ok := c.indicatorIdx[code]
	if !ok {
		return Indicator{}, false
	}
	return c.indicators[i], true
}

// CountryName returns the display name for a code, or the code itself if unknown
func (c *Catalog) CountryName(code model.CountryCode) string {
	if country, ok := c.Country(code); ok {
		return country.Name
	}
	return string(code)
}

// IndicatorName returns the display name for a code, or the code itself if unknown
func (c *Catalog) IndicatorName(code model.IndicatorCode) string {
	if indicator, ok := c.Indicator(code); ok {
		return indicator.Name
	}
	return string(code)
}

// CountryOrder returns the catalog position of a code; unknown codes sort last
func (c *Catalog) CountryOrder(code model.CountryCode) int {
	if i, ok := c.countryIdx[code]; ok {
		return i
	}
	return len(c.countries)
}

// MatchCountries returns the codes of every country with a synonym in text
func (c *Catalog) MatchCountries(text string) []model.CountryCode {
	hits := match(strings.ToLower(text), c.countrySyn, len(c.countries))
	codes := make([]model.CountryCode, 0, len(hits))
	for _, i := range hits {
		codes = append(codes, c.countries[i].Code)
	}
	return codes
}

// MatchIndicators returns the codes of every indicator with a synonym in text
func (c *Catalog) MatchIndicators(text string) []model.IndicatorCode {
	hits := match(strings.ToLower(text), c.indicatorSyn, len(c.indicators))
	codes := make([]model.IndicatorCode, 0, len(hits))
	for _, i := range hits {
		codes = append(codes, c.indicators[i].Code)
	}
	return codes
}

// CountriesForSpan maps an entity span produced by a recognizer back to countries.
// A country matches when the span is contained in one of its synonyms or contains one.
func (c *Catalog) CountriesForSpan(span string) []model.CountryCode {
	span = strings.ToLower(strings.TrimSpace(span))
	if len([]rune(span)) < 2 {
		return nil
	}

	seen := make(map[model.CountryCode]bool)
	var codes []model.CountryCode
	for _, country := range c.countries {
		for _, s := range country.Synonyms {
			s = strings.ToLower(s)
			if strings.Contains(s, span) || containsWord(span, s) {
				if !seen[country.Code] {
					seen[country.Code] = true
					codes = append(codes, country.Code)
				}
				break
			}
		}
	}
	return codes
}
