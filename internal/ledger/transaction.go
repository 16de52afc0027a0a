// Package ledger turns a user's buy/sell gold records into a net position.
//
// NetInvestment is net cash outlay: cumulative buy spend minus cumulative sell
// proceeds. It is not a cost basis. No lot matching (FIFO, average cost) is done, so a
// profitable sale can drive NetInvestment negative while NetWeightGrams stays positive.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide accepts the canonical names and the Chinese labels used by older clients.
// An empty string means buy.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "buy", "买入":
		return SideBuy, nil
	case "sell", "赎回", "卖出":
		return SideSell, nil
	default:
		return "", &ValidationError{Field: "tradeType", Reason: fmt.Sprintf("unknown trade type %q", s)}
	}
}

type Transaction struct {
	ID          string
	Side        Side
	WeightGrams decimal.Decimal
	TotalAmount decimal.Decimal
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// ValidationError rejects malformed input before it reaches aggregation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Accepted exponent range for weights, prices and totals. Check before any arithmetic.
const (
	MinExponent = -12
	MaxExponent = 12
)

// MaxAmount caps the absolute value of any weight, price or total.
var MaxAmount = decimal.New(1, 12)

// CheckMagnitude rejects d when its exponent or absolute value is out of bounds.
func CheckMagnitude(field string, d decimal.Decimal) error {
	if exp := d.Exponent(); exp < MinExponent || exp > MaxExponent {
		return &ValidationError{Field: field, Reason: "out of range"}
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must not exceed %s", MaxAmount.String())}
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Side != SideBuy && t.Side != SideSell {
		return &ValidationError{Field: "tradeType", Reason: fmt.Sprintf("unknown trade type %q", t.Side)}
	}
	if err := CheckMagnitude("weight", t.WeightGrams); err != nil {
		return err
	}
	if err := CheckMagnitude("totalPrice", t.TotalAmount); err != nil {
		return err
	}
	if t.WeightGrams.IsNegative() {
		return &ValidationError{Field: "weight", Reason: "must not be negative"}
	}
	if t.TotalAmount.IsNegative() {
		return &ValidationError{Field: "totalPrice", Reason: "must not be negative"}
	}
	if t.OccurredAt.IsZero() {
		return &ValidationError{Field: "tradeTime", Reason: "is required"}
	}
	return nil
}

// sign is +1 for buys and -1 for sells.
func (t Transaction) sign() int64 {
	if t.Side == SideSell {
		return -1
	}
	return 1
}
