package travel

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sad/backend/config"
)

// Pair the two ends of a leg; a nil end has no known location.
type Pair struct {
	From *Point
	To   *Point
}

// Planner resolves many legs concurrently.
type Planner struct {
	provider    Provider
	concurrency int
	lookups     *prometheus.CounterVec
}

// NewPlanner creates a Planner; lookups may be nil.
func NewPlanner(provider Provider, concurrency int, lookups *prometheus.CounterVec) *Planner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Planner{provider: provider, concurrency: concurrency, lookups: lookups}
}

// NewProvider builds the configured provider chain. cache may be nil.
func NewProvider(cfg *config.RoutingConfig, cache Cache, logger *zap.Logger) Provider {
	if cfg.Provider != "distance_matrix" {
		return Haversine{SpeedKMH: cfg.AverageSpeedKMH}
	}

	var p Provider = NewDistanceMatrix(cfg.Endpoint, cfg.APIKey, &http.Client{Timeout: cfg.Timeout}, cfg.RatePerSecond)
	if cache != nil {
		p = NewCached(p, cache, cfg.CacheTTL, logger)
	}
	return NewFallback(p, cfg.AverageSpeedKMH, logger)
}

// Legs resolves every pair; result i belongs to pairs[i]. Pairs with a
// missing end yield a zero leg with SourceUnknown.
func (p *Planner) Legs(ctx context.Context, pairs []Pair) ([]Leg, error) {
	legs := make([]Leg, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, pair := range pairs {
		if pair.From == nil || pair.To == nil {
			legs[i] = Leg{Source: SourceUnknown}
			p.observe(SourceUnknown)
			continue
		}
		i, from, to := i, *pair.From, *pair.To
		g.Go(func() error {
			leg, err := p.provider.Leg(gctx, from, to)
			if err != nil {
				return err
			}
			legs[i] = leg
			p.observe(leg.Source)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return legs, nil
}

func (p *Planner) observe(source string) {
	if p.lookups != nil {
		p.lookups.WithLabelValues(source).Inc()
	}
}
