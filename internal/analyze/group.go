package analyze

import (
	"sort"

	"github.com/ppiankov/macrolens/internal/model"
)

// group is all points of one (country, indicator) pair, sorted by date
type group struct {
	key           model.Pair
	countryName   string
	indicatorName string
	unit          string
	source        string
	points        []model.Point
}

func (g *group) values() []float64 {
	vs := make([]float64, len(g.points))
	for i, p := range g.points {
		vs[i] = p.Value
	}
	return vs
}

func (g *group) first() model.Point { return g.points[0] }
func (g *group) last() model.Point  { return g.points[len(g.points)-1] }

func (g *group) series() model.Series {
	points := make([]model.Point, len(g.points))
	copy(points, g.points)
	return model.Series{
		CountryName:   g.countryName,
		CountryCode:   g.key.Country,
		IndicatorName: g.indicatorName,
		IndicatorCode: g.key.Indicator,
		Unit:          g.unit,
		Source:        g.source,
		Points:        points,
	}
}

// groupSeries merges series sharing a pair and drops empty ones.
// Input series are not modified.
func groupSeries(series []model.Series) []*group {
	var groups []*group
	index := make(map[model.Pair]*group)

	for _, s := range series {
		if s.Empty() {
			continue
		}

		g, ok := index[s.Key()]
		if !ok {
			g = &group{
				key:           s.Key(),
				countryName:   s.CountryName,
				indicatorName: s.IndicatorName,
				unit:          s.Unit,
				source:        s.Source,
			}
			if g.countryName == "" {
				g.countryName = string(s.CountryCode)
			}
			if g.indicatorName == "" {
				g.indicatorName = string(s.IndicatorCode)
			}
			index[s.Key()] = g
			groups = append(groups, g)
		}
		g.points = append(g.points, s.Points...)
	}

	for _, g := range groups {
		sort.SliceStable(g.points, func(i, j int) bool {
			return g.points[i].Date.Before(g.points[j].Date)
		})
	}

	return groups
}

// distinct returns the distinct countries and indicators in group order
func distinct(groups []*group) ([]model.CountryCode, []model.IndicatorCode) {
	var countries []model.CountryCode
	var indicators []model.IndicatorCode
	seenC := make(map[model.CountryCode]bool)
	seenI := make(map[model.IndicatorCode]bool)

	for _, g := range groups {
		if !seenC[g.key.Country] {
			seenC[g.key.Country] = true
			countries = append(countries, g.key.Country)
		}
		if !seenI[g.key.Indicator] {
			seenI[g.key.Indicator] = true
			indicators = append(indicators, g.key.Indicator)
		}
	}
	return countries, indicators
}
