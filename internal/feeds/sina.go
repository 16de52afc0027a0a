package feeds

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/price"
)

var (
	sinaXAURegex    = regexp.MustCompile(`hq_str_hf_XAU="([^"]*)"`)
	sinaUSDCNYRegex = regexp.MustCompile(`hq_str_USDCNY="([^"]*)"`)
)

// SinaSource reads London spot gold (USD/oz) and converts it into CNY/g, using the
// USDCNY quote from the same response or the assumed rate when that quote is absent.
type SinaSource struct {
	client      *Client
	url         string
	referer     string
	assumedRate decimal.Decimal
	now         func() time.Time
}

func NewSinaSource(client *Client, url, referer string, assumedRate decimal.Decimal) *SinaSource {
	return &SinaSource{client: client, url: url, referer: referer, assumedRate: assumedRate, now: time.Now}
}

func (s *SinaSource) Name() string { return "sina" }

func (s *SinaSource) Fetch(ctx context.Context) (price.PricePoint, error) {
	body, err := s.client.get(ctx, s.url, map[string]string{"Referer": s.referer})
	if err != nil {
		return price.PricePoint{}, price.Classify(s.Name(), err)
	}
	text := string(body)

	usdPerOunce, err := sinaField(sinaXAURegex, text, 0)
	if err != nil {
		return price.PricePoint{}, price.ParseError(s.Name(), fmt.Errorf("hf_XAU: %w", err))
	}
	if !usdPerOunce.IsPositive() {
		return price.PricePoint{}, price.ParseError(s.Name(), fmt.Errorf("hf_XAU: non-positive quote %s", usdPerOunce))
	}

	rate, err := sinaField(sinaUSDCNYRegex, text, 1)
	if err != nil || !rate.IsPositive() {
		s.client.logger.Debug("USDCNY quote unavailable, using assumed rate", "rate", s.assumedRate.String())
		rate = s.assumedRate
	}

	perGram := usdPerOunce.Mul(rate).Div(price.GramsPerTroyOunce)
	return price.NewPoint(perGram, s.Name(), s.now()), nil
}

func sinaField(re *regexp.Regexp, text string, idx int) (decimal.Decimal, error) {
	m := re.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return decimal.Zero, fmt.Errorf("quote missing")
	}
	parts := strings.Split(m[1], ",")
	if len(parts) <= idx {
		return decimal.Zero, fmt.Errorf("quote has %d fields, want > %d", len(parts), idx)
	}
	return toDecimal(strings.TrimSpace(parts[idx]))
}
