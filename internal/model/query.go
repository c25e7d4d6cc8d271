package model

import "time"

// CountryCode is a canonical ISO-3166 alpha-3 country code (e.g. "CHN")
type CountryCode string

// IndicatorCode is a canonical World Bank style indicator code (e.g. "NY.GDP.MKTP.CD")
type IndicatorCode string

// ChartHint is the requested or inferred visualization geometry
type ChartHint string

const (
	ChartLine    ChartHint = "line"
	ChartBar     ChartHint = "bar"
	ChartScatter ChartHint = "scatter"
	ChartPie     ChartHint = "pie"
	ChartHeatmap ChartHint = "heatmap"
)

// StructuredQuery is the parser's output and the contract every later stage reads.
// Countries and Indicators are never empty once produced by the parser.
type StructuredQuery struct {
	Countries    []CountryCode   `json:"countries"`
	Indicators   []IndicatorCode `json:"indicators"`
	Start        *time.Time      `json:"start_date,omitempty"`
	End          *time.Time      `json:"end_date,omitempty"`
	IsComparison bool            `json:"is_comparison"`
	IsTrend      bool            `json:"is_trend"`
	ChartHint    ChartHint       `json:"visualization_type"`
	RawText      string          `json:"original_query"`
}

// StartYear returns the start year, or 0 when the window is open
func (q StructuredQuery) StartYear() int {
	if q.Start == nil {
		return 0
	}
	return q.Start.Year()
}

// EndYear returns the end year, or 0 when the window is open
func (q StructuredQuery) EndYear() int {
	if q.End == nil {
		return 0
	}
	return q.End.Year()
}

// ParseResult wraps a StructuredQuery with the parser's diagnostics.
// Defaulted names the fields that were substituted ("countries", "indicators", "window");
// Failure is non-empty only when the parser fell back to the safe default query.
type ParseResult struct {
	Query     StructuredQuery `json:"query"`
	Defaulted []string        `json:"defaulted,omitempty"`
	Failure   string          `json:"failure,omitempty"`
}

// Failed reports whether the parser gave up and returned the default query
func (r ParseResult) Failed() bool {
	return r.Failure != ""
}

// YearStart returns Jan 1 of the given year (UTC)
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// YearEnd returns Dec 31 of the given year (UTC)
func YearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
