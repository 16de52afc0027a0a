package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/price"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDatabase(":memory:", logger.Discard())
	require.NoError(t, err)
	return NewRepository(db)
}

func record(id, owner, side, weight, total string, tradeTime time.Time) *GoldRecord {
	return &GoldRecord{
		ID:         id,
		UserID:     owner,
		TradeType:  side,
		Weight:     decimal.RequireFromString(weight),
		UnitPrice:  decimal.RequireFromString("480"),
		TotalPrice: decimal.RequireFromString(total),
		TradeTime:  tradeTime,
	}
}

func TestRepository_RecordLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	t0 := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.InsertRecord(ctx, record("r1", "alice", "buy", "10", "4000", t0)))
	require.NoError(t, repo.InsertRecord(ctx, record("r2", "alice", "sell", "3", "1300.50", t0.AddDate(0, 0, 2))))
	require.NoError(t, repo.InsertRecord(ctx, record("r3", "bob", "buy", "1", "480", t0)))

	list, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID, "newest trade first")
	assert.Equal(t, "1300.5", list[0].TotalPrice.String())

	summary := ledger.Aggregate([]ledger.Transaction{list[0].Transaction(), list[1].Transaction()})
	assert.Equal(t, "7", summary.NetWeightGrams.String())
	assert.Equal(t, "2699.5", summary.NetInvestment.String())

	got, err := repo.GetRecord(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.True(t, got.Weight.Equal(decimal.NewFromInt(10)))

	_, err = repo.GetRecord(ctx, "bob", "r1")
	assert.ErrorIs(t, err, ErrNotFound, "records are owner scoped")

	update := record("r1", "alice", "buy", "11", "4400", t0)
	update.Remark = "corrected"
	require.NoError(t, repo.UpdateRecord(ctx, "alice", update))
	got, err = repo.GetRecord(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.Equal(t, "11", got.Weight.String())
	assert.Equal(t, "corrected", got.Remark)

	assert.ErrorIs(t, repo.UpdateRecord(ctx, "bob", update), ErrNotFound)
	assert.ErrorIs(t, repo.DeleteRecord(ctx, "bob", "r1"), ErrNotFound)
	require.NoError(t, repo.DeleteRecord(ctx, "alice", "r1"))
	assert.ErrorIs(t, repo.DeleteRecord(ctx, "alice", "r1"), ErrNotFound)

	all, err := repo.ListAllRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, all["alice"], 1)
	assert.Len(t, all["bob"], 1)
}

func TestRepository_Users(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := &User{ID: "u1", Phone: "13800000000", PasswordHash: "x", Nickname: "用户_a"}
	require.NoError(t, repo.CreateUser(ctx, u))
	assert.Error(t, repo.CreateUser(ctx, &User{ID: "u2", Phone: "13800000000", PasswordHash: "y"}),
		"phone is unique")

	got, err := repo.FindUserByPhone(ctx, "13800000000")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	got.Token = "tok"
	require.NoError(t, repo.SaveUser(ctx, got))
	byToken, err := repo.FindUserByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", byToken.ID)

	_, err = repo.FindUserByToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRepository_PriceSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.LatestPriceSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	observed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SavePriceSnapshot(ctx, NewPriceSnapshot(
		price.NewPoint(decimal.RequireFromString("480.10"), "jin10", observed))))
	require.NoError(t, repo.SavePriceSnapshot(ctx, NewPriceSnapshot(
		price.NewPoint(decimal.RequireFromString("481.20"), "sina", observed.Add(time.Minute)))))

	latest, err := repo.LatestPriceSnapshot(ctx)
	require.NoError(t, err)
	p := latest.Point()
	assert.Equal(t, "sina", p.Source)
	assert.Equal(t, "481.20", p.AmountPerGram.StringFixed(2))
	assert.Equal(t, price.ProvenanceLive, p.Provenance)
	assert.True(t, observed.Add(time.Minute).Equal(p.ObservedAt))
}
