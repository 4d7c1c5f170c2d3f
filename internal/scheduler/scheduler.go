// Package scheduler runs the periodic market price sweep.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/mesterwork/mesterwork/internal/clock"
	marketpricedomain "github.com/mesterwork/mesterwork/internal/marketprice/domain"
	"github.com/mesterwork/mesterwork/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobName = "market_price_sweep"

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	MarketPrice marketpricedomain.Service
	Metrics     *observability.Metrics
	Config      Config `optional:"true"`
}

type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	marketPrice marketpricedomain.Service
	metrics     *observability.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.MarketPrice == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         p.Log.Named("scheduler"),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		marketPrice: p.MarketPrice,
		metrics:     p.Metrics,
	}, nil
}

// RunForever ticks until the context is cancelled. One sweep runs
// immediately on start.
func (s *Scheduler) RunForever(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single all-tenant sweep.
func (s *Scheduler) RunOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	start := s.clock.Now()
	if s.metrics != nil {
		s.metrics.IncSchedulerRun(jobName)
	}

	sweep, err := s.marketPrice.RunAllTenants(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncSchedulerFailure(jobName)
		}
		s.log.Error("price sweep failed", zap.Error(err))
		return
	}

	checked, failed := 0, 0
	for _, batch := range sweep.Tenants {
		checked += batch.Checked
		failed += batch.Failed
	}
	s.log.Info("price sweep finished",
		zap.Int("tenants", len(sweep.Tenants)),
		zap.Int("checked", checked),
		zap.Int("failed", failed),
		zap.Duration("took", s.clock.Now().Sub(start)),
	)
}
