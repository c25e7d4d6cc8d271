package gateway

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/macrolens/internal/cache"
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
)

// Cached remembers hits from the wrapped gateway and collapses concurrent
// lookups of the same key into one call. Misses and errors are not cached,
// so newly collected data shows up on the next request.
type Cached struct {
	next   Gateway
	cache  cache.Cache
	ttl    time.Duration
	source string
	group  singleflight.Group
}

// NewCached wraps next. source namespaces the cache keys.
func NewCached(next Gateway, c cache.Cache, ttl time.Duration, source string) *Cached {
	return &Cached{
		next:   next,
		cache:  c,
		ttl:    ttl,
		source: source,
	}
}

// Fetch implements Gateway
func (g *Cached) Fetch(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error) {
	key := cache.SeriesKey(g.source, country, indicator, start, end)

	var hit model.Series
	if cache.Load(g.cache, key, &hit) {
		return &hit, nil
	}

	// The shared call must not be cut short by whichever caller started it
	shared := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		series, err := g.next.Fetch(shared, country, indicator, start, end)
		if err != nil || series == nil {
			return series, err
		}
		if err := cache.Store(g.cache, key, series, g.ttl); err != nil {
			logger.Log.WithField("key", key).Warnf("cache store failed: %v", err)
		}
		return series, nil
	})

	var v any
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		v = res.Val
	}

	series, _ := v.(*model.Series)
	if series == nil {
		return nil, nil
	}
	// Callers sharing a flight each get their own copy
	out := *series
	out.Points = append([]model.Point(nil), series.Points...)
	return &out, nil
}
