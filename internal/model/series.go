package model

import (
	"sort"
	"time"
)

// Point is a single dated observation
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is one country/indicator time series as returned by a gateway.
// Points are not guaranteed to be sorted; use Sorted before any ordered math.
type Series struct {
	CountryName   string        `json:"country"`
	CountryCode   CountryCode   `json:"country_code"`
	IndicatorName string        `json:"indicator"`
	IndicatorCode IndicatorCode `json:"indicator_code"`
	Unit          string        `json:"unit,omitempty"`
	Source        string        `json:"source,omitempty"`
	Points        []Point       `json:"data"`
}

// Sorted returns a copy of the points ordered by date (stable for equal dates)
func (s Series) Sorted() []Point {
	points := make([]Point, len(s.Points))
	copy(points, s.Points)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// Empty reports whether the series carries no observations
func (s Series) Empty() bool {
	return len(s.Points) == 0
}

// Pair identifies a (country, indicator) group
type Pair struct {
	Country   CountryCode   `json:"country"`
	Indicator IndicatorCode `json:"indicator"`
}

// Key returns the grouping key of the series
func (s Series) Key() Pair {
	return Pair{Country: s.CountryCode, Indicator: s.IndicatorCode}
}
