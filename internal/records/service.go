package records

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/storage"
)

// Store is the per-owner record persistence the service needs.
type Store interface {
	InsertRecord(ctx context.Context, rec *storage.GoldRecord) error
	ListByOwner(ctx context.Context, ownerID string) ([]storage.GoldRecord, error)
	GetRecord(ctx context.Context, ownerID, id string) (*storage.GoldRecord, error)
	UpdateRecord(ctx context.Context, ownerID string, rec *storage.GoldRecord) error
	DeleteRecord(ctx context.Context, ownerID, id string) error
}

// Input is a record as submitted by a client. Weight, UnitPrice and TradeTime are
// required; TotalPrice defaults to Weight*UnitPrice rounded to fen.
type Input struct {
	TradeType  string           `json:"tradeType"`
	Category   string           `json:"category"`
	Weight     *decimal.Decimal `json:"weight"`
	UnitPrice  *decimal.Decimal `json:"unitPrice"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
	TradeTime  string           `json:"tradeTime"`
	Channel    string           `json:"channel"`
	Remark     string           `json:"remark"`
}

type Listing struct {
	Summary ledger.PositionSummary
	Records []storage.GoldRecord
}

type Service struct {
	store  Store
	logger *logger.Logger
	newID  func() string
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
		newID:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

var tradeTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTradeTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ledger.ValidationError{Field: "tradeTime", Reason: "is required"}
	}
	for _, layout := range tradeTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ledger.ValidationError{Field: "tradeTime", Reason: fmt.Sprintf("unrecognised time %q", s)}
}

// toRecord validates the input and builds the record it describes.
func (in Input) toRecord(id, ownerID string) (*storage.GoldRecord, error) {
	side, err := ledger.ParseSide(in.TradeType)
	if err != nil {
		return nil, err
	}
	if in.Weight == nil {
		return nil, &ledger.ValidationError{Field: "weight", Reason: "is required"}
	}
	if in.UnitPrice == nil {
		return nil, &ledger.ValidationError{Field: "unitPrice", Reason: "is required"}
	}
	if in.UnitPrice.IsNegative() {
		return nil, &ledger.ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	}
	if err := ledger.CheckMagnitude("weight", *in.Weight); err != nil {
		return nil, err
	}
	if err := ledger.CheckMagnitude("unitPrice", *in.UnitPrice); err != nil {
		return nil, err
	}
	if in.TotalPrice != nil {
		if err := ledger.CheckMagnitude("totalPrice", *in.TotalPrice); err != nil {
			return nil, err
		}
	}
	tradeTime, err := parseTradeTime(in.TradeTime)
	if err != nil {
		return nil, err
	}

	total := in.Weight.Mul(*in.UnitPrice).Round(2)
	if in.TotalPrice != nil {
		total = *in.TotalPrice
	}

	rec := &storage.GoldRecord{
		ID:         id,
		UserID:     ownerID,
		TradeType:  string(side),
		Category:   in.Category,
		Weight:     *in.Weight,
		UnitPrice:  *in.UnitPrice,
		TotalPrice: total,
		TradeTime:  tradeTime,
		Channel:    in.Channel,
		Remark:     in.Remark,
	}
	if err := rec.Transaction().Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Add(ctx context.Context, ownerID string, in Input) (*storage.GoldRecord, error) {
	rec, err := in.toRecord(s.newID(), ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	s.logger.Info("record added", "user_id", ownerID, "record_id", rec.ID, "trade_type", rec.TradeType)
	return rec, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*storage.GoldRecord, error) {
	return s.store.GetRecord(ctx, ownerID, id)
}

func (s *Service) Update(ctx context.Context, ownerID, id string, in Input) (*storage.GoldRecord, error) {
	rec, err := in.toRecord(id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateRecord(ctx, ownerID, rec); err != nil {
		return nil, err
	}
	s.logger.Info("record updated", "user_id", ownerID, "record_id", id)
	return s.store.GetRecord(ctx, ownerID, id)
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteRecord(ctx, ownerID, id)
}

// List returns the owner's records for display together with the rounded summary.
func (s *Service) List(ctx context.Context, ownerID string) (*Listing, error) {
	recs, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return ledger.NewerFirst(recs[i].Transaction(), recs[j].Transaction())
	})
	return &Listing{
		Summary: s.aggregate(ownerID, recs).Rounded(),
		Records: recs,
	}, nil
}

// Summary is the full-precision position of one owner.
func (s *Service) Summary(ctx context.Context, ownerID string) (ledger.PositionSummary, error) {
	recs, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return ledger.PositionSummary{}, fmt.Errorf("list records: %w", err)
	}
	return s.aggregate(ownerID, recs), nil
}

// aggregate drops rows that fail validation so the aggregator only sees valid input.
func (s *Service) aggregate(ownerID string, recs []storage.GoldRecord) ledger.PositionSummary {
	txs := make([]ledger.Transaction, 0, len(recs))
	for _, rec := range recs {
		tx := rec.Transaction()
		if err := tx.Validate(); err != nil {
			s.logger.Error("skipping invalid stored record", "user_id", ownerID, "record_id", rec.ID, "error", err)
			continue
		}
		txs = append(txs, tx)
	}
	return ledger.Aggregate(txs)
}
