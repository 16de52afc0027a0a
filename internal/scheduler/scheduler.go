// Package scheduler keeps the price cache warm and reports provenance changes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/price"
	"github.com/camuig/gold-ledger/internal/storage"
)

type Resolver interface {
	Resolve(ctx context.Context) price.PricePoint
}

type SnapshotStore interface {
	SavePriceSnapshot(ctx context.Context, snapshot *storage.PriceSnapshot) error
	LatestPriceSnapshot(ctx context.Context) (*storage.PriceSnapshot, error)
}

type Alerter interface {
	NotifyDegraded(p price.PricePoint, lastLive string)
	NotifyRecovered(p price.PricePoint)
	NotifyError(context string, err error)
}

type Scheduler struct {
	resolver  Resolver
	snapshots SnapshotStore
	notifier  Alerter
	interval  time.Duration
	logger    *logger.Logger

	degraded  bool
	lastLive  string
	lastSaved time.Time
	seeded    bool
}

func NewScheduler(resolver Resolver, snapshots SnapshotStore, notifier Alerter, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		resolver:  resolver,
		snapshots: snapshots,
		notifier:  notifier,
		interval:  interval,
		logger:    log,
	}
}

// Run refreshes the price every interval until ctx is done. A zero interval
// disables the refresher. Cycles never overlap.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("price refresher disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("price refresher started", "interval", s.interval.String())

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("price refresher stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in refresh cycle", "panic", fmt.Sprint(r))
			s.notifier.NotifyError("price refresh panic", fmt.Errorf("%v", r))
		}
	}()

	p := s.resolver.Resolve(ctx)
	if ctx.Err() != nil {
		// Shutting down: a degraded answer here says nothing about the sources.
		return
	}
	s.logger.Debug("price refreshed", "price", p.AmountPerGram.String(), "source", p.SourceLabel())

	if p.Provenance == price.ProvenanceLive {
		s.saveSnapshot(ctx, p)
		if s.degraded {
			s.logger.Info("price source recovered", "source", p.Source)
			s.notifier.NotifyRecovered(p)
		}
		s.degraded = false
		s.lastLive = p.Source
		return
	}

	if !s.degraded {
		s.logger.Warn("price source degraded", "source", p.SourceLabel(), "last_live", s.lastLive)
		s.notifier.NotifyDegraded(p, s.lastLive)
	}
	s.degraded = true
}

// saveSnapshot persists each distinct live observation once; cache hits repeat the same point.
// The first call picks up the newest stored snapshot, which the cache may have been warmed from.
func (s *Scheduler) saveSnapshot(ctx context.Context, p price.PricePoint) {
	if !s.seeded {
		s.seedLastSaved(ctx)
	}
	if p.ObservedAt.Equal(s.lastSaved) {
		return
	}
	if err := s.snapshots.SavePriceSnapshot(ctx, storage.NewPriceSnapshot(p)); err != nil {
		s.logger.Error("save price snapshot", "error", err)
		return
	}
	s.lastSaved = p.ObservedAt
}

func (s *Scheduler) seedLastSaved(ctx context.Context) {
	snapshot, err := s.snapshots.LatestPriceSnapshot(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		s.logger.Error("load latest price snapshot", "error", err)
		return
	default:
		s.lastSaved = snapshot.ObservedAt
	}
	s.seeded = true
}
