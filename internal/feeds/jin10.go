package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/price"
)

// Jin10Source reads the Shanghai Gold Exchange Au99.99 quote, already in CNY per gram.
type Jin10Source struct {
	client *Client
	url    string
	now    func() time.Time
}

func NewJin10Source(client *Client, url string) *Jin10Source {
	return &Jin10Source{client: client, url: url, now: time.Now}
}

func (s *Jin10Source) Name() string { return "jin10" }

type jin10Response struct {
	Values [][]interface{} `json:"values"`
}

func (s *Jin10Source) Fetch(ctx context.Context) (price.PricePoint, error) {
	body, err := s.client.get(ctx, s.url, nil)
	if err != nil {
		return price.PricePoint{}, price.Classify(s.Name(), err)
	}

	var resp jin10Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return price.PricePoint{}, price.ParseError(s.Name(), fmt.Errorf("decode au9999: %w", err))
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) < 2 {
		return price.PricePoint{}, price.ParseError(s.Name(), errors.New("au9999: no values"))
	}

	amount, err := toDecimal(resp.Values[0][1])
	if err != nil {
		return price.PricePoint{}, price.ParseError(s.Name(), fmt.Errorf("au9999 price: %w", err))
	}

	return price.NewPoint(amount, s.Name(), s.now()), nil
}
