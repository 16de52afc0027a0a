package position

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/price"
)

type PriceResolver interface {
	Resolve(ctx context.Context) price.PricePoint
}

type SummaryReader interface {
	Summary(ctx context.Context, ownerID string) (ledger.PositionSummary, error)
}

// PriceChoice selects how a report is valued. An explicit price wins over Live;
// the zero value asks for no valuation.
type PriceChoice struct {
	Explicit *decimal.Decimal
	Live     bool
}

type Report struct {
	Summary   ledger.PositionSummary
	Valuation *ValuationView
}

// Rounded is the display form of the whole report.
func (r Report) Rounded() Report {
	out := Report{Summary: r.Summary.Rounded()}
	if r.Valuation != nil {
		v := r.Valuation.Rounded()
		out.Valuation = &v
	}
	return out
}

type Service struct {
	records  SummaryReader
	resolver PriceResolver
	now      func() time.Time
}

func NewService(records SummaryReader, resolver PriceResolver) *Service {
	return &Service{records: records, resolver: resolver, now: time.Now}
}

const explicitSource = "manual"

func (s *Service) Report(ctx context.Context, ownerID string, choice PriceChoice) (*Report, error) {
	if choice.Explicit != nil {
		if err := ledger.CheckMagnitude("price", *choice.Explicit); err != nil {
			return nil, err
		}
		if !choice.Explicit.IsPositive() {
			return nil, &ledger.ValidationError{Field: "price", Reason: "must be positive"}
		}
	}

	summary, err := s.records.Summary(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	report := &Report{Summary: summary}

	switch {
	case choice.Explicit != nil:
		v := Valuate(summary, price.NewPoint(*choice.Explicit, explicitSource, s.now()))
		report.Valuation = &v
	case choice.Live:
		v := Valuate(summary, s.resolver.Resolve(ctx))
		report.Valuation = &v
	}
	return report, nil
}
