package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/model"
)

// Memory serves series held in process. It backs tests and offline demos.
type Memory struct {
	mu      sync.RWMutex
	points  map[model.Pair][]model.Point
	source  string
	catalog *catalog.Catalog
}

// NewMemory creates an empty in-memory gateway
func NewMemory(cat *catalog.Catalog) *Memory {
	return &Memory{
		points:  make(map[model.Pair][]model.Point),
		source:  SourceMemory,
		catalog: cat,
	}
}

// Add appends points for a country/indicator pair
func (m *Memory) Add(country model.CountryCode, indicator model.IndicatorCode, points ...model.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := model.Pair{Country: country, Indicator: indicator}
	m.points[key] = append(m.points[key], points...)
}

// AddYearly adds one point per year starting at firstYear
func (m *Memory) AddYearly(country model.CountryCode, indicator model.IndicatorCode, firstYear int, values ...float64) {
	points := make([]model.Point, len(values))
	for i, v := range values {
		points[i] = model.Point{Date: model.YearStart(firstYear + i), Value: v}
	}
	m.Add(country, indicator, points...)
}

// Fetch implements Gateway
func (m *Memory) Fetch(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	stored := m.points[model.Pair{Country: country, Indicator: indicator}]
	var points []model.Point
	for _, p := range stored {
		if inWindow(p.Date, start, end) {
			points = append(points, p)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return newSeries(m.catalog, country, indicator, m.source, points), nil
}
