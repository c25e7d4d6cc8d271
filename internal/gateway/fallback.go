package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
)

// Named pairs a gateway with the source name used in logs
type Named struct {
	Name    string
	Gateway Gateway
}

// Fallback tries each gateway in order and returns the first non-empty series.
// Errors from earlier gateways are logged; they are returned joined only when
// no gateway produced data.
type Fallback struct {
	gateways []Named
}

// NewFallback creates a fallback chain
func NewFallback(gateways ...Named) *Fallback {
	return &Fallback{gateways: gateways}
}

// Fetch implements Gateway
func (f *Fallback) Fetch(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error) {
	var errs []error
	for _, g := range f.gateways {
		series, err := g.Gateway.Fetch(ctx, country, indicator, start, end)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Log.WithFields(logrus.Fields{
				"source":    g.Name,
				"country":   country,
				"indicator": indicator,
			}).Warnf("lookup failed: %v", err)
			errs = append(errs, err)
			continue
		}
		if series != nil && !series.Empty() {
			return series, nil
		}
	}
	return nil, errors.Join(errs...)
}
