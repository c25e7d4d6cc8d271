// Package pipeline answers a question end to end: parse, fetch, analyze,
// synthesize and the optional LLM narrative.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/macrolens/internal/analyze"
	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/gateway"
	"github.com/ppiankov/macrolens/internal/llm"
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
	"github.com/ppiankov/macrolens/internal/parse"
	"github.com/ppiankov/macrolens/internal/report"
	"github.com/ppiankov/macrolens/internal/worker"
)

// Version is the release version printed by the CLI and report footers
const Version = "0.1.0"

// Pipeline orchestrates question answering. It holds no per-request state and
// is safe for concurrent use.
type Pipeline struct {
	catalog     *catalog.Catalog
	parser      *parse.Parser
	gateway     gateway.Gateway
	analyzer    *analyze.Analyzer
	synthesizer *report.Synthesizer
	renderer    *Renderer
	summarizer  *llm.Summarizer // Optional LLM summarizer (nil if disabled)
	config      *model.Config
}

// Option configures a Pipeline
type Option func(*options)

type options struct {
	now        func() time.Time
	newID      func() string
	summarizer *llm.Summarizer
	recognizer parse.LocationRecognizer
}

// WithClock fixes the clock used for relative windows and report timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFunc overrides the report ID generator
func WithIDFunc(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithSummarizer sets the LLM summarizer instead of building one from config
func WithSummarizer(s *llm.Summarizer) Option {
	return func(o *options) { o.summarizer = s }
}

// WithRecognizer sets the parser's fallback location recognizer
func WithRecognizer(r parse.LocationRecognizer) Option {
	return func(o *options) { o.recognizer = r }
}

// NewPipeline creates a pipeline over the given catalog and gateway
func NewPipeline(cfg *model.Config, cat *catalog.Catalog, gw gateway.Gateway, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if cat == nil {
		cat = catalog.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	summarizer := o.summarizer
	if summarizer == nil && cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			logger.Log.WithError(err).Warn("Failed to initialize LLM provider")
		} else {
			summarizer = s
		}
	}

	recognizer := o.recognizer
	if recognizer == nil {
		recognizer = parse.NewGazetteer(nil)
		if cfg.LLM.Recognizer && summarizer.IsEnabled() {
			recognizer = parse.Chain{recognizer, llm.NewRecognizer(summarizer.Provider())}
		}
	}

	parserOpts := []parse.Option{parse.WithRecognizer(recognizer)}
	var synthOpts []report.Option
	if o.now != nil {
		parserOpts = append(parserOpts, parse.WithClock(o.now))
		synthOpts = append(synthOpts, report.WithClock(o.now))
	}
	if o.newID != nil {
		synthOpts = append(synthOpts, report.WithIDFunc(o.newID))
	}

	return &Pipeline{
		catalog:     cat,
		parser:      parse.New(cat, cfg.Analysis, parserOpts...),
		gateway:     gw,
		analyzer:    analyze.New(cfg.Analysis),
		synthesizer: report.New(cat, cfg.Analysis, synthOpts...),
		renderer:    NewRenderer(cfg.Output.IncludeFooter),
		summarizer:  summarizer,
		config:      cfg,
	}
}

// Result carries every stage's output for one question
type Result struct {
	Parse    model.ParseResult    `json:"query"`
	Analysis model.AnalysisResult `json:"analysis"`
	Report   *model.Report        `json:"report"`
	Message  string               `json:"message"`
}

// Process answers one question and returns the report. The only error is
// cancellation of ctx; missing data yields a "no data" report.
func (p *Pipeline) Process(ctx context.Context, text string) (*model.Report, error) {
	res, err := p.Run(ctx, text)
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}

// Run answers one question and returns all intermediate results
func (p *Pipeline) Run(ctx context.Context, text string) (*Result, error) {
	parsed := p.parser.ParseContext(ctx, text)
	q := parsed.Query

	log := logger.Log.WithFields(logrus.Fields{
		"countries":  len(q.Countries),
		"indicators": len(q.Indicators),
	})
	if parsed.Failed() {
		log.WithField("reason", parsed.Failure).Warn("Parser fell back to default query")
	}

	series := p.fetch(ctx, q)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process question: %w", err)
	}
	log.WithField("series", len(series)).Debug("Fetched series")

	analysis := p.analyzer.Analyze(series, q)
	rep := p.synthesizer.Synthesize(analysis, q)

	// The narrative is attached after synthesis and never changes the report body
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, rep)
		if err != nil {
			log.WithError(err).Warn("LLM summary generation failed")
		} else if summary != nil {
			rep.LLM = summary
		}
	}

	return &Result{
		Parse:    parsed,
		Analysis: analysis,
		Report:   &rep,
		Message:  ResponseMessage(q, series),
	}, nil
}

// Catalog returns the entity catalog the pipeline resolves names with
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.catalog
}

// Gateway returns the data gateway the pipeline reads from
func (p *Pipeline) Gateway() gateway.Gateway {
	return p.gateway
}

// ResponseMessage is the one-line chat reply for a query, e.g.
// "这是中国、美国在2015年至2024年期间的GDP（现价美元）数据比较。"
func ResponseMessage(q model.StructuredQuery, series []model.Series) string {
	var countries, indicators []string
	seenCountry := make(map[model.CountryCode]bool)
	seenIndicator := make(map[model.IndicatorCode]bool)
	for _, s := range series {
		if s.Empty() {
			continue
		}
		if !seenCountry[s.CountryCode] {
			seenCountry[s.CountryCode] = true
			countries = append(countries, s.CountryName)
		}
		if !seenIndicator[s.IndicatorCode] {
			seenIndicator[s.IndicatorCode] = true
			indicators = append(indicators, s.IndicatorName)
		}
	}

	if len(countries) == 0 {
		return "抱歉，我没有找到符合您查询的数据。请尝试不同的国家、指标或时间范围。"
	}

	startYear, endYear := "未知", "未知"
	if q.Start != nil {
		startYear = fmt.Sprintf("%d", q.Start.Year())
	}
	if q.End != nil {
		endYear = fmt.Sprintf("%d", q.End.Year())
	}
	timeRange := startYear + "年至" + endYear + "年"
	if startYear == endYear {
		timeRange = startYear + "年"
	}

	countryList := strings.Join(countries, "、")
	indicatorList := strings.Join(indicators, "、")

	switch {
	case len(countries) > 1 && len(indicators) == 1:
		return fmt.Sprintf("这是%s在%s期间的%s数据比较。", countryList, timeRange, indicatorList)
	case len(countries) == 1 && len(indicators) > 1:
		return fmt.Sprintf("这是%s在%s期间的%s数据。", countryList, timeRange, indicatorList)
	default:
		return fmt.Sprintf("这是您请求的%s在%s期间的%s数据。", countryList, timeRange, indicatorList)
	}
}

// RenderReport renders the report to the specified outputs and prints the
// terminal summary
func (p *Pipeline) RenderReport(rep *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(rep, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(rep, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// LLM narrative goes to its own file so it is never mistaken for the report
	if rep.LLM != nil && rep.LLM.Enabled && mdPath != "" {
		llmMdPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(rep.LLM), llmMdPath); err != nil {
			logger.Log.WithError(err).Warn("Failed to write LLM summary")
		} else if verbose {
			fmt.Printf("✓ Wrote LLM Summary: %s\n", llmMdPath)
		}
	}

	p.renderer.RenderSummary(rep)

	return nil
}

// Renderer returns the pipeline's report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// fetch looks up every (country, indicator) pair concurrently and returns the
// non-empty series in country-major, indicator order. Failures and misses
// are logged and dropped.
func (p *Pipeline) fetch(ctx context.Context, q model.StructuredQuery) []model.Series {
	if p.gateway == nil {
		return nil
	}

	jobs := make([]worker.Job, 0, len(q.Countries)*len(q.Indicators))
	for _, country := range q.Countries {
		for _, indicator := range q.Indicators {
			jobs = append(jobs, &fetchJob{
				gateway:   p.gateway,
				country:   country,
				indicator: indicator,
				start:     q.Start,
				end:       q.End,
			})
		}
	}

	results := worker.Run(ctx, p.config.Concurrency.FetchWorkers, jobs)

	series := make([]model.Series, 0, len(results))
	for _, r := range results {
		fr := r.(*fetchResult)
		log := logger.Log.WithFields(logrus.Fields{
			"country":   fr.country,
			"indicator": fr.indicator,
		})
		switch {
		case fr.err != nil:
			log.WithError(fr.err).Warn("Fetch failed")
		case fr.series == nil || fr.series.Empty():
			log.Debug("No data")
		default:
			series = append(series, *fr.series)
		}
	}
	return series
}

type fetchJob struct {
	gateway   gateway.Gateway
	country   model.CountryCode
	indicator model.IndicatorCode
	start     *time.Time
	end       *time.Time
}

func (j *fetchJob) Execute(ctx context.Context) worker.Result {
	s, err := j.gateway.Fetch(ctx, j.country, j.indicator, j.start, j.end)
	return &fetchResult{country: j.country, indicator: j.indicator, series: s, err: err}
}

type fetchResult struct {
	country   model.CountryCode
	indicator model.IndicatorCode
	series    *model.Series
	err       error
}

func (r *fetchResult) GetError() error {
	return r.err
}
