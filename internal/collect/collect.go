// Package collect copies World Bank and IMF observations into the SQL store.
package collect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/macrolens/internal/gateway"
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
	"github.com/ppiankov/macrolens/internal/worker"
)

const defaultReliability = 0.9

// Store is the write side of the SQL store
type Store interface {
	EnsureSource(ctx context.Context, name, url string, reliability float64, now time.Time) (int64, error)
	SavePoints(ctx context.Context, sourceID int64, country model.CountryCode, indicator model.IndicatorCode, points []model.Point) (int, error)
}

// IndicatorSource reads one indicator for many countries in one call
type IndicatorSource interface {
	FetchIndicator(ctx context.Context, indicator model.IndicatorCode, countries []model.CountryCode, start, end *time.Time) (map[model.CountryCode][]model.Point, error)
}

// Summary counts the outcome of one collection run
type Summary struct {
	Source  string `json:"source"`
	Saved   int    `json:"saved"`   // Points written
	Missing int    `json:"missing"` // Pairs the source had no data for
	Failed  int    `json:"failed"`  // Pairs that errored
}

// Collector pulls configured countries and indicators into the store
type Collector struct {
	store     Store
	worldBank gateway.Gateway
	imf       IndicatorSource
	cfg       model.CollectConfig
	workers   int
	now       func() time.Time
}

// New creates a collector. Either source may be nil to disable it.
func New(store Store, worldBank gateway.Gateway, imf IndicatorSource, cfg model.CollectConfig, workers int) *Collector {
	return &Collector{
		store:     store,
		worldBank: worldBank,
		imf:       imf,
		cfg:       cfg,
		workers:   workers,
		now:       time.Now,
	}
}

// Run collects from the named sources ("worldbank", "imf") in order.
// A failing source does not stop the others.
func (c *Collector) Run(ctx context.Context, sources []string) ([]Summary, error) {
	var (
		summaries []Summary
		errs      []error
	)
	for _, src := range sources {
		var (
			s   Summary
			err error
		)
		switch src {
		case gateway.SourceWorldBank:
			s, err = c.CollectWorldBank(ctx)
		case gateway.SourceIMF:
			s, err = c.CollectIMF(ctx)
		default:
			err = fmt.Errorf("unknown collect source %q", src)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, errors.Join(errs...)
}

func (c *Collector) window() *time.Time {
	if c.cfg.FromYear <= 0 {
		return nil
	}
	start := model.YearStart(c.cfg.FromYear)
	return &start
}

// pairJob fetches and stores one country/indicator pair
type pairJob struct {
	collector *Collector
	sourceID  int64
	country   model.CountryCode
	indicator model.IndicatorCode
}

type pairResult struct {
	country   model.CountryCode
	indicator model.IndicatorCode
	saved     int
	missing   bool
	err       error
}

func (r *pairResult) GetError() error { return r.err }

func (j *pairJob) Execute(ctx context.Context) worker.Result {
	r := &pairResult{country: j.country, indicator: j.indicator}

	series, err := j.collector.worldBank.Fetch(ctx, j.country, j.indicator, j.collector.window(), nil)
	if err != nil {
		r.err = err
		return r
	}
	if series == nil || series.Empty() {
		r.missing = true
		return r
	}
	r.saved, r.err = j.collector.store.SavePoints(ctx, j.sourceID, j.country, j.indicator, series.Points)
	return r
}

// CollectWorldBank fetches every configured indicator for every configured country
func (c *Collector) CollectWorldBank(ctx context.Context) (Summary, error) {
	summary := Summary{Source: gateway.SourceWorldBank}
	if c.worldBank == nil {
		return summary, errors.New("world bank source not configured")
	}

	logger.Log.WithField("started", c.now().Format(time.RFC3339)).Info("world bank collection started")

	sourceID, err := c.store.EnsureSource(ctx, "World Bank", "https://data.worldbank.org/", defaultReliability, c.now())
	if err != nil {
		return summary, fmt.Errorf("ensure source: %w", err)
	}

	var jobs []worker.Job
	for _, ind := range c.cfg.Indicators {
		for _, country := range c.cfg.Countries {
			jobs = append(jobs, &pairJob{collector: c, sourceID: sourceID, country: country, indicator: ind})
		}
	}

	for _, res := range worker.Run(ctx, c.workers, jobs) {
		r := res.(*pairResult)
		fields := logrus.Fields{"country": r.country, "indicator": r.indicator}
		switch {
		case r.err != nil:
			summary.Failed++
			logger.Log.WithFields(fields).Warnf("collect failed: %v", r.err)
		case r.missing:
			summary.Missing++
			logger.Log.WithFields(fields).Debug("no data")
		default:
			summary.Saved += r.saved
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	logger.Log.WithFields(logrus.Fields{"saved": summary.Saved, "missing": summary.Missing, "failed": summary.Failed}).
		Info("world bank collection finished")
	return summary, nil
}

// CollectIMF fetches every configured IMF indicator, one request per indicator
func (c *Collector) CollectIMF(ctx context.Context) (Summary, error) {
	summary := Summary{Source: gateway.SourceIMF}
	if c.imf == nil {
		return summary, errors.New("imf source not configured")
	}

	logger.Log.WithField("started", c.now().Format(time.RFC3339)).Info("imf collection started")

	sourceID, err := c.store.EnsureSource(ctx, "IMF", "https://www.imf.org/external/datamapper/", defaultReliability, c.now())
	if err != nil {
		return summary, fmt.Errorf("ensure source: %w", err)
	}

	for _, ind := range c.cfg.IMFIndicators {
		byCountry, err := c.imf.FetchIndicator(ctx, ind, c.cfg.Countries, c.window(), nil)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.Failed += len(c.cfg.Countries)
			logger.Log.WithField("indicator", ind).Warnf("collect failed: %v", err)
			continue
		}

		for _, country := range c.cfg.Countries {
			points := byCountry[country]
			if len(points) == 0 {
				summary.Missing++
				continue
			}
			n, err := c.store.SavePoints(ctx, sourceID, country, ind, points)
			if err != nil {
				summary.Failed++
				logger.Log.WithFields(logrus.Fields{"country": country, "indicator": ind}).Warnf("save failed: %v", err)
				continue
			}
			summary.Saved += n
		}
	}

	logger.Log.WithFields(logrus.Fields{"saved": summary.Saved, "missing": summary.Missing, "failed": summary.Failed}).
		Info("imf collection finished")
	return summary, nil
}
