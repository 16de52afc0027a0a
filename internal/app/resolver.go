// Package app wires the price resolver shared by the server and goldctl.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/feeds"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/price"
	"github.com/camuig/gold-ledger/internal/storage"
)

type SnapshotReader interface {
	LatestPriceSnapshot(ctx context.Context) (*storage.PriceSnapshot, error)
}

// NewResolver builds the cascade from config and warms the cache from the newest
// persisted snapshot. The snapshot's creation time is its fetch time, so an old
// snapshot only serves the stale tier.
func NewResolver(ctx context.Context, cfg *config.Config, client *feeds.Client, snapshots SnapshotReader, log *logger.Logger) (*price.Resolver, error) {
	sources, err := feeds.Sources(cfg, client)
	if err != nil {
		return nil, err
	}

	synthetic := price.NewSyntheticSource(
		cfg.Baseline(),
		decimal.NewFromFloat(cfg.Price.SyntheticBand),
		cfg.Price.SyntheticStep,
		uint64(time.Now().UnixNano()),
		time.Now,
	)

	resolver := price.NewResolver(price.NewCache(cfg.CacheTTL(), time.Now), price.ResolverOptions{
		Sources:       sources,
		Fallback:      synthetic,
		SourceTimeout: cfg.SourceTimeout(),
		Baseline:      cfg.Baseline(),
	}, log.With("component", "price"))

	snapshot, err := snapshots.LatestPriceSnapshot(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		log.Warn("load latest price snapshot", "error", err)
	default:
		resolver.Warm(snapshot.Point(), snapshot.CreatedAt)
		log.Info("price cache warmed", "price", snapshot.Price.String(), "source", snapshot.Source,
			"age", time.Since(snapshot.CreatedAt).Round(time.Second).String())
	}

	return resolver, nil
}
