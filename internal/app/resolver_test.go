package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/feeds"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/price"
	"github.com/camuig/gold-ledger/internal/storage"
)

func setup(t *testing.T, status int, body string) (*config.Config, *feeds.Client, *storage.Repository, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Sources.Order = []string{config.SourceJin10}
	cfg.Sources.Jin10URL = srv.URL
	cfg.Sources.RatePerSec = 1000
	cfg.Price.SourceTimeout = "1s"

	db, err := storage.NewDatabase(":memory:", logger.Discard())
	require.NoError(t, err)
	return cfg, feeds.NewClient(cfg, logger.Discard()), storage.NewRepository(db), &hits
}

func TestNewResolver_LiveSource(t *testing.T) {
	cfg, client, repo, hits := setup(t, http.StatusOK, `{"values":[["t","481.5"]]}`)

	r, err := NewResolver(context.Background(), cfg, client, repo, logger.Discard())
	require.NoError(t, err)

	p := r.Resolve(context.Background())
	assert.Equal(t, "481.50", p.AmountPerGram.StringFixed(2))
	assert.Equal(t, "jin10", p.SourceLabel())
	assert.EqualValues(t, 1, hits.Load())
}

func TestNewResolver_WarmsFromRecentSnapshot(t *testing.T) {
	ctx := context.Background()
	cfg, client, repo, hits := setup(t, http.StatusBadGateway, "")
	require.NoError(t, repo.SavePriceSnapshot(ctx, storage.NewPriceSnapshot(
		price.NewPoint(decimal.RequireFromString("479.9"), "sina", time.Now()))))

	r, err := NewResolver(ctx, cfg, client, repo, logger.Discard())
	require.NoError(t, err)

	p := r.Resolve(ctx)
	assert.Equal(t, "sina", p.SourceLabel())
	assert.Zero(t, hits.Load(), "fresh snapshot serves from cache")
}

func TestNewResolver_ColdAndFailingFallsBackToSynthetic(t *testing.T) {
	cfg, client, repo, _ := setup(t, http.StatusBadGateway, "")

	r, err := NewResolver(context.Background(), cfg, client, repo, logger.Discard())
	require.NoError(t, err)

	p := r.Resolve(context.Background())
	assert.Equal(t, price.ProvenanceSynthetic, p.Provenance)
	assert.True(t, p.AmountPerGram.IsPositive())
}

func TestNewResolver_RejectsUnknownSource(t *testing.T) {
	cfg, client, repo, _ := setup(t, http.StatusOK, "")
	cfg.Sources.Order = []string{"lbma"}

	_, err := NewResolver(context.Background(), cfg, client, repo, logger.Discard())
	assert.ErrorContains(t, err, "lbma")
}
