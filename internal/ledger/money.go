package ledger

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatCNY renders an amount with thousands separators and the yuan grapheme.
func FormatCNY(amount decimal.Decimal) string {
	fen := amount.Round(2).Shift(2).IntPart()
	return money.New(fen, money.CNY).Display()
}

// FormatGrams renders a weight with two decimals.
func FormatGrams(weight decimal.Decimal) string {
	return weight.StringFixed(2) + "g"
}
