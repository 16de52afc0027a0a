package web

import (
	"time"

	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/position"
	"github.com/camuig/gold-ledger/internal/price"
	"github.com/camuig/gold-ledger/internal/storage"
)

// Amounts leave the API as fixed two-decimal strings so clients never see float drift.

type priceResponse struct {
	Price      string           `json:"price"`
	Source     string           `json:"source"`
	Provenance price.Provenance `json:"provenance"`
	UpdateTime time.Time        `json:"updateTime"`
}

func newPriceResponse(p price.PricePoint) priceResponse {
	return priceResponse{
		Price:      p.AmountPerGram.StringFixed(2),
		Source:     p.SourceLabel(),
		Provenance: p.Provenance,
		UpdateTime: p.ObservedAt,
	}
}

type summaryResponse struct {
	TotalWeight string `json:"totalWeight"`
	TotalCost   string `json:"totalCost"`
}

func newSummaryResponse(s ledger.PositionSummary) summaryResponse {
	return summaryResponse{
		TotalWeight: s.NetWeightGrams.StringFixed(2),
		TotalCost:   s.NetInvestment.StringFixed(2),
	}
}

type listResponse struct {
	Summary summaryResponse      `json:"summary"`
	List    []storage.GoldRecord `json:"list"`
}

type valuationResponse struct {
	MarketValue   string           `json:"marketValue"`
	UnrealizedPnL string           `json:"unrealizedPnL"`
	Price         string           `json:"price"`
	Source        string           `json:"source"`
	Provenance    price.Provenance `json:"provenance"`
	PricedAt      time.Time        `json:"pricedAt"`
}

type reportResponse struct {
	Summary   summaryResponse    `json:"summary"`
	Valuation *valuationResponse `json:"valuation,omitempty"`
}

func newReportResponse(r position.Report) reportResponse {
	r = r.Rounded()
	out := reportResponse{Summary: newSummaryResponse(r.Summary)}
	if v := r.Valuation; v != nil {
		out.Valuation = &valuationResponse{
			MarketValue:   v.MarketValue.StringFixed(2),
			UnrealizedPnL: v.UnrealizedPnL.StringFixed(2),
			Price:         v.PricePerGram.StringFixed(2),
			Source:        v.PriceSource,
			Provenance:    v.Provenance,
			PricedAt:      v.PricedAt,
		}
	}
	return out
}

type credentials struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	UserInfo  *storage.User `json:"userInfo"`
}

type adminUserResponse struct {
	UserID      string    `json:"userID"`
	Phone       string    `json:"phone"`
	Nickname    string    `json:"nickname"`
	CreateTime  time.Time `json:"createTime"`
	TotalWeight string    `json:"totalWeight"`
	TotalCost   string    `json:"totalCost"`
	Records     int       `json:"records"`
}
