package ledger

import (
	"github.com/shopspring/decimal"
)

type PositionSummary struct {
	NetWeightGrams decimal.Decimal
	NetInvestment  decimal.Decimal
}

// Aggregate sums signed contributions: buys add weight and spend, sells subtract
// weight and proceeds. The result does not depend on input order. Callers must
// validate transactions first.
func Aggregate(txs []Transaction) PositionSummary {
	weight := decimal.Zero
	invested := decimal.Zero

	for _, tx := range txs {
		sign := decimal.NewFromInt(tx.sign())
		weight = weight.Add(tx.WeightGrams.Mul(sign))
		invested = invested.Add(tx.TotalAmount.Mul(sign))
	}

	return PositionSummary{NetWeightGrams: weight, NetInvestment: invested}
}

// Rounded is the display form, two decimals half away from zero.
func (s PositionSummary) Rounded() PositionSummary {
	return PositionSummary{
		NetWeightGrams: s.NetWeightGrams.Round(2),
		NetInvestment:  s.NetInvestment.Round(2),
	}
}

// NewerFirst is the display order: newest trade first, then newest entry first.
func NewerFirst(a, b Transaction) bool {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.After(b.OccurredAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}
