package ai

import (
	"time"

	"github.com/camuig/gold-ledger/internal/feeds"
	"github.com/camuig/gold-ledger/internal/price"
)

// BriefRequest is the market context the model comments on.
type BriefRequest struct {
	Price     price.PricePoint
	Headlines []feeds.NewsItem
}

type Brief struct {
	Content     string    `json:"content"`
	Model       string    `json:"model"`
	PriceSource string    `json:"priceSource"`
	GeneratedAt time.Time `json:"generatedAt"`
}
