package feeds

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// toDecimal accepts the loosely typed numbers upstream feeds emit.
func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number")
		}
		return decimal.NewFromFloat(n), nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse %q: %w", n, err)
		}
		return d, nil
	case nil:
		return decimal.Zero, fmt.Errorf("missing value")
	default:
		return decimal.Zero, fmt.Errorf("unexpected type %T", v)
	}
}
