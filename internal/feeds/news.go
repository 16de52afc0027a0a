package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const newsQuery = "gold price OR 黄金价格 OR 金价"

type NewsItem struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Time        string    `json:"time"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// NewsResult carries headlines and whether they came from the canned fallback.
type NewsResult struct {
	Items    []NewsItem
	Fallback bool
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// NewsFeed queries NewsAPI for gold headlines.
type NewsFeed struct {
	client   *Client
	baseURL  string
	apiKey   string
	pageSize int
	now      func() time.Time
}

func NewNewsFeed(client *Client, baseURL, apiKey string, pageSize int) *NewsFeed {
	return &NewsFeed{client: client, baseURL: baseURL, apiKey: apiKey, pageSize: pageSize, now: time.Now}
}

// GoldNews never fails: upstream errors fall back to canned headlines.
func (f *NewsFeed) GoldNews(ctx context.Context) NewsResult {
	items, err := f.FetchNews(ctx)
	if err != nil {
		f.client.logger.Warn("fetch gold news failed, using fallback", "error", err)
		return NewsResult{Items: fallbackNews(), Fallback: true}
	}
	return NewsResult{Items: items}
}

func (f *NewsFeed) FetchNews(ctx context.Context) ([]NewsItem, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("news api key not configured")
	}

	q := url.Values{}
	q.Set("q", newsQuery)
	q.Set("language", "zh")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(f.pageSize))
	q.Set("apiKey", f.apiKey)

	body, err := f.client.get(ctx, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse news response: %w", err)
	}
	if resp.Articles == nil {
		return nil, fmt.Errorf("news response has no articles (status %q)", resp.Status)
	}

	now := f.now()
	items := make([]NewsItem, 0, len(resp.Articles))
	for i, a := range resp.Articles {
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		items = append(items, NewsItem{
			ID:          i + 1,
			Title:       a.Title,
			Source:      a.Source.Name,
			Time:        RelativeTime(now, published),
			Summary:     summarize(a.Description, a.Content),
			URL:         a.URL,
			PublishedAt: published,
		})
	}
	return items, nil
}

func summarize(description, content string) string {
	if description != "" {
		return description
	}
	if content != "" {
		r := []rune(content)
		if len(r) > 100 {
			r = r[:100]
		}
		return string(r) + "..."
	}
	return "暂无摘要"
}

// RelativeTime renders how long ago a headline was published.
func RelativeTime(now, published time.Time) string {
	if published.IsZero() {
		return ""
	}
	hours := int(now.Sub(published).Hours())
	days := hours / 24

	switch {
	case hours < 1:
		return "刚刚"
	case hours < 24:
		return fmt.Sprintf("%d小时前", hours)
	case days < 7:
		return fmt.Sprintf("%d天前", days)
	default:
		return published.Format("2006/1/2")
	}
}

func fallbackNews() []NewsItem {
	return []NewsItem{
		{ID: 1, Title: "全球央行持续增持黄金储备", Source: "世界黄金协会", Time: "2小时前",
			Summary: "多国央行延续购金趋势，黄金在储备资产中的比重继续上升。", URL: "#"},
		{ID: 2, Title: "降息预期升温，避险需求支撑金价", Source: "市场观察", Time: "5小时前",
			Summary: "市场对美联储降息的预期推动资金流入黄金资产。", URL: "#"},
		{ID: 3, Title: "技术面显示金价短期或有回调", Source: "市场观察", Time: "1天前",
			Summary: "分析人士提示短线波动风险，建议关注关键支撑位。", URL: "#"},
	}
}
