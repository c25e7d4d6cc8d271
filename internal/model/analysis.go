package model

import "time"

// AnalysisResult is the analyzer's output for one request
type AnalysisResult struct {
	NoData     bool               `json:"no_data"`
	Reason     string             `json:"reason,omitempty"`
	Series     []Series           `json:"data,omitempty"`
	Statistics []StatisticsRecord `json:"statistics,omitempty"`
	Trends     []TrendRecord      `json:"trend_analysis,omitempty"`
	Comparison Comparison         `json:"comparison"`
	Chart      *ChartSpec         `json:"visualization,omitempty"`
}

// Observation is a value with the date it was observed
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// StatisticsRecord holds descriptive statistics for one (country, indicator) group.
// CAGR and RecentChangePct are nil when they are undefined for the group.
type StatisticsRecord struct {
	Country         CountryCode   `json:"country_code"`
	CountryName     string        `json:"country"`
	Indicator       IndicatorCode `json:"indicator_code"`
	IndicatorName   string        `json:"indicator"`
	Unit            string        `json:"unit,omitempty"`
	Count           int           `json:"count"`
	Mean            float64       `json:"mean"`
	Median          float64       `json:"median"`
	Min             float64       `json:"min"`
	Max             float64       `json:"max"`
	StdDev          float64       `json:"std"`
	Latest          Observation   `json:"latest"`
	CAGR            *float64      `json:"cagr,omitempty"`
	RecentChangePct *float64      `json:"recent_change_pct,omitempty"`
}

// Direction classifies the sign of a fitted slope
type Direction string

const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
	DirectionFlat    Direction = "flat"
)

// Label returns the report wording for the direction
func (d Direction) Label() string {
	switch d {
	case DirectionRising:
		return "上升"
	case DirectionFalling:
		return "下降"
	default:
		return "稳定"
	}
}

// TrendRecord holds the linear trend fit for one (country, indicator) group.
// Recent is nil when RecentInsufficient is set (fewer points than the trailing window).
type TrendRecord struct {
	Country            CountryCode   `json:"country_code"`
	CountryName        string        `json:"country"`
	Indicator          IndicatorCode `json:"indicator_code"`
	IndicatorName      string        `json:"indicator"`
	Direction          Direction     `json:"overall_trend"`
	Slope              float64       `json:"slope"`
	Intercept          float64       `json:"intercept"`
	RSquared           float64       `json:"trend_strength"`
	Recent             *Direction    `json:"recent_trend,omitempty"`
	RecentInsufficient bool          `json:"recent_insufficient,omitempty"`
	InflectionDates    []time.Time   `json:"inflection_points,omitempty"`
}

// ComparisonKind tags which branch of Comparison is populated
type ComparisonKind string

const (
	ComparisonNone           ComparisonKind = ""
	ComparisonCrossCountry   ComparisonKind = "cross_country"
	ComparisonCrossIndicator ComparisonKind = "cross_indicator"
)

// Comparison is a tagged union: at most one of CrossCountry / CrossIndicator is set,
// matching Kind
type Comparison struct {
	Kind           ComparisonKind  `json:"type,omitempty"`
	CrossCountry   *CrossCountry   `json:"cross_country,omitempty"`
	CrossIndicator *CrossIndicator `json:"cross_indicator,omitempty"`
}

// Empty reports whether no comparison was produced
func (c Comparison) Empty() bool {
	return c.Kind == ComparisonNone
}

// CrossCountry ranks countries by their latest value of one indicator
type CrossCountry struct {
	Indicator     IndicatorCode `json:"indicator_code"`
	IndicatorName string        `json:"indicator"`
	Unit          string        `json:"unit,omitempty"`
	Rankings      []Ranking     `json:"rankings"`
}

// Ranking is one entry of a cross-country comparison
type Ranking struct {
	Country        CountryCode `json:"country_code"`
	CountryName    string      `json:"country"`
	Value          float64     `json:"value"`
	Date           time.Time   `json:"date"`
	Rank           int         `json:"rank"`
	DiffFromTopPct float64     `json:"difference_from_top"`
}

// CrossIndicator orders one country's indicators by percent change over the window
type CrossIndicator struct {
	Country     CountryCode       `json:"country_code"`
	CountryName string            `json:"country"`
	Changes     []IndicatorChange `json:"indicator_changes"`
}

// IndicatorChange is first-to-last change for one indicator.
// Unbounded marks a change from a zero baseline, clamped to the configured bound.
type IndicatorChange struct {
	Indicator     IndicatorCode `json:"indicator_code"`
	IndicatorName string        `json:"indicator"`
	FirstValue    float64       `json:"first_value"`
	LastValue     float64       `json:"last_value"`
	ChangePct     float64       `json:"change_pct"`
	Unbounded     bool          `json:"unbounded,omitempty"`
}

// ChartLayout is the panel arrangement chosen from the shape of the data
type ChartLayout string

const (
	// LayoutOverlay overlays one trace per country on a single panel
	LayoutOverlay ChartLayout = "overlay"
	// LayoutPanels draws one panel per indicator over a shared time axis
	LayoutPanels ChartLayout = "panels"
	// LayoutTraces draws one trace per (country, indicator) pair on one panel
	LayoutTraces ChartLayout = "traces"
)

// ChartSpec is a renderer-neutral chart description
type ChartSpec struct {
	Layout     ChartLayout  `json:"layout"`
	Geometry   ChartHint    `json:"vis_type"`
	Title      string       `json:"title"`
	XAxis      string       `json:"x_axis,omitempty"`
	SharedTime bool         `json:"shared_x,omitempty"`
	Panels     []ChartPanel `json:"panels"`
}

// ChartPanel is one plotting area
type ChartPanel struct {
	Title  string       `json:"title,omitempty"`
	YAxis  string       `json:"y_axis,omitempty"`
	Traces []ChartTrace `json:"traces"`
}

// ChartTrace is one drawn series
type ChartTrace struct {
	Name   string       `json:"name"`
	Mode   string       `json:"mode"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is a single plotted value; Label is the x category for bar/pie geometry
type ChartPoint struct {
	Label string    `json:"label,omitempty"`
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
