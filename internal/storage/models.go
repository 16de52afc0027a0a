package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/price"
)

type User struct {
	ID        string    `gorm:"primarykey;size:32" json:"userID"`
	CreatedAt time.Time `json:"createTime"`
	UpdatedAt time.Time `json:"-"`

	Phone        string    `gorm:"uniqueIndex;size:32" json:"phone"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Nickname     string    `json:"nickname"`
	Avatar       string    `json:"avatar"`
	Token        string    `gorm:"index;size:64" json:"-"`
	TokenExpires time.Time `json:"-"`
}

// GoldRecord is one persisted buy or sell.
type GoldRecord struct {
	ID        string    `gorm:"primarykey;size:32" json:"recordID"`
	CreatedAt time.Time `json:"createTime"`
	UpdatedAt time.Time `json:"updateTime"`

	UserID     string          `gorm:"index;size:32;not null" json:"userID"`
	TradeType  string          `gorm:"not null;default:'buy'" json:"tradeType"`
	Category   string          `json:"category"`
	Weight     decimal.Decimal `gorm:"type:text;not null" json:"weight"`
	UnitPrice  decimal.Decimal `gorm:"type:text;not null" json:"unitPrice"`
	TotalPrice decimal.Decimal `gorm:"type:text;not null" json:"totalPrice"`
	TradeTime  time.Time       `gorm:"index;not null" json:"tradeTime"`
	Channel    string          `json:"channel"`
	Remark     string          `json:"remark"`
}

func (r GoldRecord) Transaction() ledger.Transaction {
	return ledger.Transaction{
		ID:          r.ID,
		Side:        ledger.Side(r.TradeType),
		WeightGrams: r.Weight,
		TotalAmount: r.TotalPrice,
		OccurredAt:  r.TradeTime,
		CreatedAt:   r.CreatedAt,
	}
}

// PriceSnapshot persists live resolutions so the stale tier survives restarts.
type PriceSnapshot struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Price      decimal.Decimal `gorm:"type:text;not null" json:"price"`
	Source     string          `gorm:"not null" json:"source"`
	Provenance string          `gorm:"not null" json:"provenance"`
	ObservedAt time.Time       `json:"observed_at"`
}

func NewPriceSnapshot(p price.PricePoint) *PriceSnapshot {
	return &PriceSnapshot{
		Price:      p.AmountPerGram,
		Source:     p.Source,
		Provenance: string(p.Provenance),
		ObservedAt: p.ObservedAt,
	}
}

func (s PriceSnapshot) Point() price.PricePoint {
	return price.PricePoint{
		AmountPerGram: s.Price,
		Currency:      price.CurrencyCNY,
		Source:        s.Source,
		Provenance:    price.Provenance(s.Provenance),
		ObservedAt:    s.ObservedAt,
	}
}
