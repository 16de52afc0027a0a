package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/price"
)

func newTestClient() *Client {
	cfg := config.Default()
	cfg.Sources.RatePerSec = 1000
	cfg.Sources.RateBurst = 100
	return NewClient(cfg, logger.Discard())
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func assertFetchError(t *testing.T, err error, kind price.FetchErrorKind) {
	t.Helper()
	var fe *price.FetchError
	require.True(t, errors.As(err, &fe), "want *price.FetchError, got %T", err)
	assert.Equal(t, kind, fe.Kind)
}

func TestJin10Source_Fetch(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string price", `{"values":[["2026-03-02 10:00:00","481.236"]]}`, "481.24"},
		{"numeric price", `{"values":[["2026-03-02 10:00:00",479.5]]}`, "479.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)
			s := NewJin10Source(newTestClient(), srv.URL)

			p, err := s.Fetch(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.AmountPerGram.StringFixed(2))
			assert.Equal(t, "jin10", p.Source)
			assert.Equal(t, price.CurrencyCNY, p.Currency)
			assert.Equal(t, price.ProvenanceLive, p.Provenance)
		})
	}
}

func TestJin10Source_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   price.FetchErrorKind
	}{
		{"server error", http.StatusBadGateway, "", price.KindUnavailable},
		{"not json", http.StatusOK, "<html>", price.KindParse},
		{"empty values", http.StatusOK, `{"values":[]}`, price.KindParse},
		{"short row", http.StatusOK, `{"values":[["2026-03-02"]]}`, price.KindParse},
		{"garbage price", http.StatusOK, `{"values":[["t","abc"]]}`, price.KindParse},
		{"null price", http.StatusOK, `{"values":[["t",null]]}`, price.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			_, err := NewJin10Source(newTestClient(), srv.URL).Fetch(context.Background())
			assertFetchError(t, err, tt.kind)
		})
	}
}

func TestJin10Source_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewJin10Source(newTestClient(), srv.URL).Fetch(ctx)
	assertFetchError(t, err, price.KindTimeout)
}

func TestJin10Source_RateLimitPastDeadlineIsTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"values":[["t","480"]]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Sources.RatePerSec = 0.001
	cfg.Sources.RateBurst = 1
	source := NewJin10Source(NewClient(cfg, logger.Discard()), srv.URL)

	_, err := source.Fetch(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	_, err = source.Fetch(ctx)

	assertFetchError(t, err, price.KindTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "limiter should refuse without waiting")
	assert.Equal(t, int32(1), hits.Load())
}

func TestSinaSource_ConvertsWithLiveRate(t *testing.T) {
	body := "var hq_str_hf_XAU=\"2400.00,2390.10,2401.00\";\nvar hq_str_USDCNY=\"16:57:02,7.1000,7.1001\";\n"
	var gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	s := NewSinaSource(newTestClient(), srv.URL, "https://finance.sina.com.cn/", decimal.RequireFromString("7.2"))
	p, err := s.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "547.85", p.AmountPerGram.StringFixed(2))
	assert.Equal(t, "sina", p.Source)
	assert.Equal(t, "https://finance.sina.com.cn/", gotReferer)
}

func TestSinaSource_AssumedRateWhenFXMissing(t *testing.T) {
	srv := serve(t, http.StatusOK, "var hq_str_hf_XAU=\"2400.00,2390.10\";\nvar hq_str_USDCNY=\"\";\n")

	s := NewSinaSource(newTestClient(), srv.URL, "", decimal.RequireFromString("7.2"))
	p, err := s.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "555.56", p.AmountPerGram.StringFixed(2))
}

func TestSinaSource_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing gold quote", "var hq_str_USDCNY=\"16:57:02,7.1\";"},
		{"empty gold quote", "var hq_str_hf_XAU=\"\";"},
		{"zero gold quote", "var hq_str_hf_XAU=\"0.00,1\";"},
		{"nan gold quote", "var hq_str_hf_XAU=\"NaN,1\";"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)
			s := NewSinaSource(newTestClient(), srv.URL, "", decimal.RequireFromString("7.2"))
			_, err := s.Fetch(context.Background())
			assertFetchError(t, err, price.KindParse)
		})
	}
}

func TestNewsFeed_FetchNews(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	body := `{"status":"ok","articles":[
		{"source":{"name":"财经"},"title":"金价上涨","description":"摘要","url":"https://a","publishedAt":"2026-03-02T09:00:00Z"},
		{"source":{"name":"新闻"},"title":"金价回落","description":"","content":"正文","url":"https://b","publishedAt":"2026-02-27T12:00:00Z"}
	]}`
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewNewsFeed(newTestClient(), srv.URL, "key", 10)
	f.now = func() time.Time { return now }

	res := f.GoldNews(context.Background())

	assert.False(t, res.Fallback)
	require.Len(t, res.Items, 2)
	assert.Equal(t, newsQuery, query)
	assert.Equal(t, "3小时前", res.Items[0].Time)
	assert.Equal(t, "摘要", res.Items[0].Summary)
	assert.Equal(t, "3天前", res.Items[1].Time)
	assert.Equal(t, "正文...", res.Items[1].Summary)
}

func TestNewsFeed_FallbackWithoutKey(t *testing.T) {
	f := NewNewsFeed(newTestClient(), "http://127.0.0.1:0", "", 10)

	res := f.GoldNews(context.Background())

	assert.True(t, res.Fallback)
	assert.NotEmpty(t, res.Items)
}

func TestNewsFeed_FallbackOnUpstreamError(t *testing.T) {
	srv := serve(t, http.StatusUnauthorized, `{"status":"error"}`)
	f := NewNewsFeed(newTestClient(), srv.URL, "bad", 10)

	res := f.GoldNews(context.Background())

	assert.True(t, res.Fallback)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "刚刚", RelativeTime(now, now.Add(-10*time.Minute)))
	assert.Equal(t, "5小时前", RelativeTime(now, now.Add(-5*time.Hour)))
	assert.Equal(t, "2天前", RelativeTime(now, now.Add(-50*time.Hour)))
	assert.Equal(t, "2026/3/1", RelativeTime(now, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", RelativeTime(now, time.Time{}))
}
