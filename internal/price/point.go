// Package price resolves the reference gold price through an ordered cascade of
// upstream sources, a single-slot cache and a synthetic fallback.
package price

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const CurrencyCNY = "CNY"

// GramsPerTroyOunce converts USD/oz quotes into per-gram prices.
var GramsPerTroyOunce = decimal.RequireFromString("31.1034768")

// Provenance tells consumers how much to trust a PricePoint.
type Provenance string

const (
	ProvenanceLive      Provenance = "live"
	ProvenanceStale     Provenance = "stale"
	ProvenanceSynthetic Provenance = "synthetic"
)

// PricePoint is one resolved observation of the gold price in CNY per gram.
type PricePoint struct {
	AmountPerGram decimal.Decimal
	Currency      string
	Source        string
	Provenance    Provenance
	ObservedAt    time.Time
}

// NewPoint builds a live point, rounding the amount to fen.
func NewPoint(amount decimal.Decimal, source string, observedAt time.Time) PricePoint {
	return PricePoint{
		AmountPerGram: amount.Round(2),
		Currency:      CurrencyCNY,
		Source:        source,
		Provenance:    ProvenanceLive,
		ObservedAt:    observedAt,
	}
}

// SourceLabel is the provenance-annotated label shown to users.
func (p PricePoint) SourceLabel() string {
	switch p.Provenance {
	case ProvenanceStale:
		return p.Source + " (stale)"
	case ProvenanceSynthetic:
		return string(ProvenanceSynthetic)
	default:
		return p.Source
	}
}

// Usable reports whether the point can be served: strictly positive amount.
func (p PricePoint) Usable() bool {
	return p.AmountPerGram.IsPositive()
}

// Source wraps one upstream price feed. Fetch must honour the context deadline and
// return a *FetchError on every failure.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (PricePoint, error)
}
