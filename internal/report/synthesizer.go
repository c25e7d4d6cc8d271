// Package report turns analysis results into a titled, prose-and-tables report.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/model"
)

const dateLayout = "2006-01-02"

// Synthesizer builds reports. Apart from the injected clock and ID generator it is
// a pure function of the analysis and the query.
type Synthesizer struct {
	catalog *catalog.Catalog
	cfg     model.AnalysisConfig
	now     func() time.Time
	newID   func() string
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithClock sets the clock used for GeneratedAt
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

// WithIDFunc sets the report ID generator
func WithIDFunc(newID func() string) Option {
	return func(s *Synthesizer) { s.newID = newID }
}

// New creates a synthesizer. Non-positive thresholds fall back to the defaults.
func New(cat *catalog.Catalog, cfg model.AnalysisConfig, opts ...Option) *Synthesizer {
	defaults := model.DefaultConfig().Analysis
	if cfg.SignificantChangePct <= 0 {
		cfg.SignificantChangePct = defaults.SignificantChangePct
	}
	if cfg.StrongTrendR2 <= 0 {
		cfg.StrongTrendR2 = defaults.StrongTrendR2
	}

	s := &Synthesizer{
		catalog: cat,
		cfg:     cfg,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds the report for an analysis result
func (s *Synthesizer) Synthesize(a model.AnalysisResult, q model.StructuredQuery) model.Report {
	r := model.Report{
		ID:          s.newID(),
		Title:       s.title(q),
		KeyFindings: []string{},
		Tables:      []model.DataTable{},
		GeneratedAt: s.now(),
		Query:       q,
	}

	if a.NoData {
		r.NoData = true
		r.Summary = s.noDataSummary(q)
		return r
	}

	r.Summary = s.summary(a, q)
	r.KeyFindings = s.findings(a)
	r.Tables = tables(a)
	r.Chart = a.Chart

	return r
}

func (s *Synthesizer) title(q model.StructuredQuery) string {
	countries := "全球"
	if len(q.Countries) > 0 {
		countries = strings.Join(s.countryNames(q.Countries), "、")
	}

	indicators := "宏观经济指标"
	if len(q.Indicators) > 0 {
		indicators = strings.Join(s.indicatorNames(q.Indicators), "、")
	}

	var period string
	switch {
	case q.Start != nil && q.End != nil:
		period = fmt.Sprintf("%d-%d年", q.StartYear(), q.EndYear())
	case q.Start != nil:
		period = fmt.Sprintf("%d年至今", q.StartYear())
	case q.End != nil:
		period = fmt.Sprintf("截至%d年", q.EndYear())
	}

	return fmt.Sprintf("%s %s %s分析报告", countries, indicators, period)
}

func (s *Synthesizer) noDataSummary(q model.StructuredQuery) string {
	var b strings.Builder
	b.WriteString("未找到")
	if len(q.Countries) > 0 {
		b.WriteString(strings.Join(s.countryNames(q.Countries), "、"))
		b.WriteString("的")
	}
	if len(q.Indicators) > 0 {
		b.WriteString(strings.Join(s.indicatorNames(q.Indicators), "、"))
	} else {
		b.WriteString("经济指标")
	}
	b.WriteString(periodPhrase(q, "在%d年至%d年期间", "%d年以来", "截至%d年"))
	b.WriteString("的数据。请尝试不同的国家、指标或时间范围。")
	return b.String()
}

func (s *Synthesizer) countryNames(codes []model.CountryCode) []string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = s.catalog.CountryName(c)
	}
	return names
}

func (s *Synthesizer) indicatorNames(codes []model.IndicatorCode) []string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = s.catalog.IndicatorName(c)
	}
	return names
}

// periodPhrase renders the query window with one of three formats
func periodPhrase(q model.StructuredQuery, both, startOnly, endOnly string) string {
	switch {
	case q.Start != nil && q.End != nil:
		return fmt.Sprintf(both, q.StartYear(), q.EndYear())
	case q.Start != nil:
		return fmt.Sprintf(startOnly, q.StartYear())
	case q.End != nil:
		return fmt.Sprintf(endOnly, q.EndYear())
	default:
		return ""
	}
}

// magnitudes are tried largest first
var magnitudes = []struct {
	scale  float64
	suffix string
}{
	{1e12, "万亿"},
	{1e8, "亿"},
	{1e4, "万"},
}

// formatValue renders a number with two decimals and its unit. Values of
// 万 and above are scaled to 万亿, 亿 or 万; percentages never are.
func formatValue(v float64, unit string) string {
	if unit == "%" {
		return fmt.Sprintf("%.2f%%", v)
	}
	for _, m := range magnitudes {
		if math.Abs(v) >= m.scale {
			return fmt.Sprintf("%.2f%s%s", v/m.scale, m.suffix, unit)
		}
	}
	if unit == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", math.Abs(v))
}
