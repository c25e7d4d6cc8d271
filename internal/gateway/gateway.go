// Package gateway retrieves country/indicator time series from a local SQL store,
// the World Bank and IMF APIs, or memory, with caching and fallback decorators.
package gateway

import (
	"context"
	"time"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/model"
)

// Source names accepted in GatewayConfig.Sources
const (
	SourceStore     = "store"
	SourceWorldBank = "worldbank"
	SourceIMF       = "imf"
	SourceMemory    = "memory"
)

// Gateway returns the series for one country and indicator inside an optional
// [start, end] window. A nil series with a nil error is a miss.
type Gateway interface {
	Fetch(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error)
}

// Func adapts a function to Gateway
type Func func(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error)

// Fetch calls f
func (f Func) Fetch(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error) {
	return f(ctx, country, indicator, start, end)
}

func inWindow(d time.Time, start, end *time.Time) bool {
	if start != nil && d.Before(*start) {
		return false
	}
	if end != nil && d.After(*end) {
		return false
	}
	return true
}

// newSeries labels points with catalog display names and unit.
// It returns nil when there are no points, so callers can report a miss directly.
func newSeries(cat *catalog.Catalog, country model.CountryCode, indicator model.IndicatorCode, source string, points []model.Point) *model.Series {
	if len(points) == 0 {
		return nil
	}

	s := &model.Series{
		CountryName:   string(country),
		CountryCode:   country,
		IndicatorName: string(indicator),
		IndicatorCode: indicator,
		Source:        source,
		Points:        points,
	}
	if cat != nil {
		s.CountryName = cat.CountryName(country)
		s.IndicatorName = cat.IndicatorName(indicator)
		if ind, ok := cat.Indicator(indicator); ok {
			s.Unit = ind.Unit
		}
	}
	return s
}

// yearRange turns an optional window into inclusive years for APIs that filter by year.
// Open bounds fall back to 1960 and the current year.
func yearRange(start, end *time.Time, now time.Time) (int, int) {
	from, to := 1960, now.Year()
	if start != nil {
		from = start.Year()
	}
	if end != nil {
		to = end.Year()
	}
	return from, to
}
