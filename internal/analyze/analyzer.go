// Package analyze computes statistics, trends, comparisons and a chart description
// from the series retrieved for a structured query.
package analyze

import (
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
)

// Analyzer is a pure function of its inputs and its thresholds.
// It is safe for concurrent use.
type Analyzer struct {
	cfg model.AnalysisConfig
}

// New creates an analyzer. Zero thresholds are replaced with the defaults.
func New(cfg model.AnalysisConfig) *Analyzer {
	defaults := model.DefaultConfig().Analysis
	if cfg.MinTrendPoints <= 0 {
		cfg.MinTrendPoints = defaults.MinTrendPoints
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = defaults.RecentWindow
	}
	if cfg.CAGRMarker == "" {
		cfg.CAGRMarker = defaults.CAGRMarker
	}
	if cfg.UnboundedChangePct <= 0 {
		cfg.UnboundedChangePct = defaults.UnboundedChangePct
	}
	return &Analyzer{cfg: cfg}
}

// Analyze groups the series by (country, indicator) and derives every record.
// Groups keep the order in which they first appear in series; callers pass series
// in request order (country-major, then indicator). Empty input yields a NoData result.
func (a *Analyzer) Analyze(series []model.Series, q model.StructuredQuery) model.AnalysisResult {
	groups := groupSeries(series)
	if len(groups) == 0 {
		logger.Log.WithField("query", q.RawText).Info("No data points to analyze")
		return model.AnalysisResult{NoData: true, Reason: "没有数据可供分析"}
	}

	result := model.AnalysisResult{
		Series:     make([]model.Series, 0, len(groups)),
		Statistics: make([]model.StatisticsRecord, 0, len(groups)),
	}

	for _, g := range groups {
		result.Series = append(result.Series, g.series())
		result.Statistics = append(result.Statistics, a.describe(g))

		if q.IsTrend && len(g.points) >= a.cfg.MinTrendPoints {
			result.Trends = append(result.Trends, a.trend(g))
		}
	}

	if q.IsComparison {
		result.Comparison = a.compare(groups)
	}

	result.Chart = buildChart(groups, q.ChartHint)

	return result
}
