// Package parse turns free-text macroeconomic questions into structured queries.
package parse

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
)

// Parser extracts countries, indicators, a year window, intent flags and a chart
// hint from text. It holds no mutable state and is safe for concurrent use.
type Parser struct {
	catalog    *catalog.Catalog
	cfg        model.AnalysisConfig
	recognizer LocationRecognizer
	now        func() time.Time
}

// Option configures a Parser
type Option func(*Parser)

// WithRecognizer sets the fallback location recognizer used when no country
// synonym matches
func WithRecognizer(r LocationRecognizer) Option {
	return func(p *Parser) { p.recognizer = r }
}

// WithClock overrides the clock used to resolve relative windows
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a parser. Missing defaults in cfg are filled from model.DefaultConfig.
func New(cat *catalog.Catalog, cfg model.AnalysisConfig, opts ...Option) *Parser {
	defaults := model.DefaultConfig().Analysis
	if len(cfg.DefaultCountries) == 0 {
		cfg.DefaultCountries = defaults.DefaultCountries
	}
	if len(cfg.DefaultIndicators) == 0 {
		cfg.DefaultIndicators = defaults.DefaultIndicators
	}
	if cfg.DefaultWindowYears <= 0 {
		cfg.DefaultWindowYears = defaults.DefaultWindowYears
	}

	p := &Parser{
		catalog:    cat,
		cfg:        cfg,
		recognizer: NewGazetteer(nil),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses text without a deadline on the recognizer
func (p *Parser) Parse(text string) model.ParseResult {
	return p.ParseContext(context.Background(), text)
}

// ParseContext parses text. It never fails: on an internal failure it returns the
// default query with Failure set.
func (p *Parser) ParseContext(ctx context.Context, text string) (res model.ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("parse panic: %v", r)
			logger.Log.WithField("query", text).Errorf("Query parsing failed, using default query: %s", reason)
			res = p.fallback(text, reason)
		}
	}()

	norm := normalize(text)
	currentYear := p.now().Year()

	q := model.StructuredQuery{
		Countries:    p.extractCountries(ctx, norm),
		Indicators:   p.catalog.MatchIndicators(norm),
		IsComparison: isComparison(norm),
		IsTrend:      isTrend(norm),
		ChartHint:    chartHint(norm),
		RawText:      text,
	}

	w := extractWindow(norm, currentYear, p.cfg.DefaultWindowYears)
	q.Start, q.End = w.bounds()

	var defaulted []string
	if len(q.Countries) == 0 {
		q.Countries = append([]model.CountryCode(nil), p.cfg.DefaultCountries...)
		defaulted = append(defaulted, "countries")
	}
	if len(q.Indicators) == 0 {
		q.Indicators = append([]model.IndicatorCode(nil), p.cfg.DefaultIndicators...)
		defaulted = append(defaulted, "indicators")
	}
	if w.defaulted {
		defaulted = append(defaulted, "window")
	}

	logger.Log.WithFields(logrus.Fields{
		"countries":  q.Countries,
		"indicators": q.Indicators,
		"start":      w.start,
		"end":        w.end,
	}).Debug("Parsed query")

	return model.ParseResult{Query: q, Defaulted: defaulted}
}

// extractCountries matches catalog synonyms, falling back to the recognizer
func (p *Parser) extractCountries(ctx context.Context, norm string) []model.CountryCode {
	countries := p.catalog.MatchCountries(norm)
	if len(countries) > 0 || p.recognizer == nil {
		return countries
	}

	spans, err := p.recognizer.Recognize(ctx, norm)
	if err != nil {
		logger.Log.WithError(err).Debug("Location recognizer failed, treating as no match")
		return countries
	}

	seen := make(map[model.CountryCode]bool)
	for _, span := range spans {
		for _, code := range p.catalog.CountriesForSpan(span) {
			if !seen[code] {
				seen[code] = true
				countries = append(countries, code)
			}
		}
	}

	sort.SliceStable(countries, func(i, j int) bool {
		return p.catalog.CountryOrder(countries[i]) < p.catalog.CountryOrder(countries[j])
	})
	return countries
}

// fallback is the safe default query returned when parsing fails
func (p *Parser) fallback(text, reason string) model.ParseResult {
	currentYear := p.now().Year()
	w := window{start: currentYear - p.cfg.DefaultWindowYears, end: currentYear}

	q := model.StructuredQuery{
		Countries:  append([]model.CountryCode(nil), p.cfg.DefaultCountries...),
		Indicators: append([]model.IndicatorCode(nil), p.cfg.DefaultIndicators...),
		IsTrend:    true,
		ChartHint:  model.ChartLine,
		RawText:    text,
	}
	q.Start, q.End = w.bounds()

	return model.ParseResult{
		Query:     q,
		Defaulted: []string{"countries", "indicators", "window"},
		Failure:   reason,
	}
}
