package analyze

import (
	"math"
	"time"

	"github.com/ppiankov/macrolens/internal/model"
)

// lineFit is an ordinary least squares fit of value against a 0-based index
type lineFit struct {
	slope     float64
	intercept float64
	r2        float64
}

// fitLine fits y = slope*i + intercept over i = 0..n-1. It needs at least two values.
// A constant series fits exactly with slope 0 and R² 0.
func fitLine(values []float64) lineFit {
	n := float64(len(values))
	if len(values) < 2 {
		return lineFit{}
	}
	if minOf(values) == maxOf(values) {
		return lineFit{intercept: values[0]}
	}

	// slope = (n*Σxy - Σx*Σy) / (n*Σx² - (Σx)²)
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssTot, ssRes float64
	for i, y := range values {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}

	var r2 float64
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}

	return lineFit{slope: slope, intercept: intercept, r2: r2}
}

func direction(slope float64) model.Direction {
	switch {
	case slope > 0:
		return model.DirectionRising
	case slope < 0:
		return model.DirectionFalling
	default:
		return model.DirectionFlat
	}
}

// trend fits the whole group and, when long enough, its trailing window
func (a *Analyzer) trend(g *group) model.TrendRecord {
	values := g.values()
	fit := fitLine(values)

	rec := model.TrendRecord{
		Country:         g.key.Country,
		CountryName:     g.countryName,
		Indicator:       g.key.Indicator,
		IndicatorName:   g.indicatorName,
		Direction:       direction(fit.slope),
		Slope:           fit.slope,
		Intercept:       fit.intercept,
		RSquared:        fit.r2,
		InflectionDates: inflections(g.points),
	}

	if len(values) >= a.cfg.RecentWindow {
		recent := direction(fitLine(values[len(values)-a.cfg.RecentWindow:]).slope)
		rec.Recent = &recent
	} else {
		rec.RecentInsufficient = true
	}

	return rec
}

// inflections returns the dates where consecutive first differences switch between
// negative and non-negative. The reported date is the turning point itself.
func inflections(points []model.Point) []time.Time {
	if len(points) < 3 {
		return nil
	}

	var dates []time.Time
	prevNeg := math.Signbit(points[1].Value - points[0].Value)
	for i := 1; i < len(points)-1; i++ {
		neg := math.Signbit(points[i+1].Value - points[i].Value)
		if neg != prevNeg {
			dates = append(dates, points[i].Date)
		}
		prevNeg = neg
	}
	return dates
}
