// Package position values a ledger summary against a reference gold price.
package position

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/price"
)

type ValuationView struct {
	MarketValue   decimal.Decimal
	UnrealizedPnL decimal.Decimal
	PricePerGram  decimal.Decimal
	PriceSource   string
	Provenance    price.Provenance
	PricedAt      time.Time
}

// Valuate computes market value and unrealized PnL. An oversold position yields a
// negative market value; it is reported as is.
func Valuate(summary ledger.PositionSummary, p price.PricePoint) ValuationView {
	marketValue := summary.NetWeightGrams.Mul(p.AmountPerGram)
	return ValuationView{
		MarketValue:   marketValue,
		UnrealizedPnL: marketValue.Sub(summary.NetInvestment),
		PricePerGram:  p.AmountPerGram,
		PriceSource:   p.SourceLabel(),
		Provenance:    p.Provenance,
		PricedAt:      p.ObservedAt,
	}
}

// Rounded is the display form, two decimals half away from zero.
func (v ValuationView) Rounded() ValuationView {
	v.MarketValue = v.MarketValue.Round(2)
	v.UnrealizedPnL = v.UnrealizedPnL.Round(2)
	v.PricePerGram = v.PricePerGram.Round(2)
	return v
}
