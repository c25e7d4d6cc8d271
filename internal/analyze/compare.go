package analyze

import (
	"math"
	"sort"

	"github.com/ppiankov/macrolens/internal/model"
)

// compare builds the comparison for the two supported shapes: several countries on
// one indicator, or several indicators for one country. Anything else is empty.
func (a *Analyzer) compare(groups []*group) model.Comparison {
	countries, indicators := distinct(groups)

	switch {
	case len(countries) > 1 && len(indicators) == 1:
		return model.Comparison{
			Kind:         model.ComparisonCrossCountry,
			CrossCountry: crossCountry(groups),
		}
	case len(indicators) > 1 && len(countries) == 1:
		return model.Comparison{
			Kind:           model.ComparisonCrossIndicator,
			CrossIndicator: a.crossIndicator(groups),
		}
	default:
		return model.Comparison{}
	}
}

// crossCountry ranks groups by latest value, descending. Ties keep group order.
func crossCountry(groups []*group) *model.CrossCountry {
	first := groups[0]
	cc := &model.CrossCountry{
		Indicator:     first.key.Indicator,
		IndicatorName: first.indicatorName,
		Unit:          first.unit,
		Rankings:      make([]model.Ranking, 0, len(groups)),
	}

	for _, g := range groups {
		latest := g.last()
		cc.Rankings = append(cc.Rankings, model.Ranking{
			Country:     g.key.Country,
			CountryName: g.countryName,
			Value:       latest.Value,
			Date:        latest.Date,
		})
	}

	sort.SliceStable(cc.Rankings, func(i, j int) bool {
		return cc.Rankings[i].Value > cc.Rankings[j].Value
	})

	top := cc.Rankings[0].Value
	for i := range cc.Rankings {
		cc.Rankings[i].Rank = i + 1
		if top != 0 {
			cc.Rankings[i].DiffFromTopPct = (cc.Rankings[i].Value - top) / top * 100
		}
	}

	return cc
}

// crossIndicator orders one country's indicators by first-to-last percent change,
// descending. Indicators with fewer than two points are skipped.
func (a *Analyzer) crossIndicator(groups []*group) *model.CrossIndicator {
	first := groups[0]
	ci := &model.CrossIndicator{
		Country:     first.key.Country,
		CountryName: first.countryName,
	}

	for _, g := range groups {
		if len(g.points) < 2 {
			continue
		}
		from, to := g.first().Value, g.last().Value
		change, unbounded := a.changePct(from, to)
		ci.Changes = append(ci.Changes, model.IndicatorChange{
			Indicator:     g.key.Indicator,
			IndicatorName: g.indicatorName,
			FirstValue:    from,
			LastValue:     to,
			ChangePct:     change,
			Unbounded:     unbounded,
		})
	}

	sort.SliceStable(ci.Changes, func(i, j int) bool {
		return ci.Changes[i].ChangePct > ci.Changes[j].ChangePct
	})

	return ci
}

// changePct is the percent change from a baseline. A zero baseline with a non-zero
// end is clamped to ±UnboundedChangePct and flagged; zero to zero is no change.
func (a *Analyzer) changePct(from, to float64) (float64, bool) {
	bound := a.cfg.UnboundedChangePct
	switch {
	case from == 0 && to == 0:
		return 0, false
	case from == 0 && to > 0:
		return bound, true
	case from == 0:
		return -bound, true
	}

	change := (to - from) / from * 100
	if math.IsNaN(change) {
		return 0, false
	}
	if math.IsInf(change, 0) || math.Abs(change) > bound {
		return math.Copysign(bound, change), true
	}
	return change, false
}
