package analyze

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/macrolens/internal/model"
)

const daysPerYear = 365.25

// describe computes descriptive statistics for a non-empty group
func (a *Analyzer) describe(g *group) model.StatisticsRecord {
	values := g.values()
	last := g.last()

	rec := model.StatisticsRecord{
		Country:       g.key.Country,
		CountryName:   g.countryName,
		Indicator:     g.key.Indicator,
		IndicatorName: g.indicatorName,
		Unit:          g.unit,
		Count:         len(values),
		Mean:          mean(values),
		Median:        median(values),
		Min:           minOf(values),
		Max:           maxOf(values),
		StdDev:        sampleStdDev(values),
		Latest:        model.Observation{Date: last.Date, Value: last.Value},
	}
	// Summation rounding can push the mean of a flat series past its bounds
	rec.Mean = math.Max(rec.Min, math.Min(rec.Max, rec.Mean))

	if len(g.points) >= 2 {
		if strings.Contains(strings.ToLower(g.indicatorName), strings.ToLower(a.cfg.CAGRMarker)) {
			rec.CAGR = cagr(g.first(), last)
		}
		rec.RecentChangePct = percentChange(g.points[len(g.points)-2].Value, last.Value)
	}

	return rec
}

// cagr returns the compound annual growth rate in percent, or nil when undefined
func cagr(first, last model.Point) *float64 {
	years := last.Date.Sub(first.Date).Hours() / 24 / daysPerYear
	if years <= 0 || first.Value <= 0 {
		return nil
	}
	return finitePtr((math.Pow(last.Value/first.Value, 1/years) - 1) * 100)
}

// percentChange returns (to-from)/from in percent, or nil when from is zero
func percentChange(from, to float64) *float64 {
	if from == 0 {
		return nil
	}
	return finitePtr((to - from) / from * 100)
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// sampleStdDev uses the n-1 denominator; fewer than two values yields 0
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
