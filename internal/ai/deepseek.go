package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/logger"
)

// ErrNotConfigured is returned when no DeepSeek API key is set.
var ErrNotConfigured = errors.New("deepseek not configured")

type DeepSeekClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	enabled bool
	logger  *logger.Logger
	now     func() time.Time
}

func NewDeepSeekClient(cfg *config.Config, log *logger.Logger) *DeepSeekClient {
	ocfg := openai.DefaultConfig(cfg.DeepSeek.APIKey)
	ocfg.BaseURL = cfg.DeepSeek.BaseURL

	return &DeepSeekClient{
		client:  openai.NewClientWithConfig(ocfg),
		model:   cfg.DeepSeek.Model,
		timeout: cfg.DeepSeekTimeout(),
		enabled: cfg.DeepSeekEnabled(),
		logger:  log,
		now:     time.Now,
	}
}

func (d *DeepSeekClient) Enabled() bool {
	return d.enabled
}

func (d *DeepSeekClient) Brief(ctx context.Context, req *BriefRequest) (*Brief, error) {
	if !d.enabled {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.logger.Info("sending brief request to DeepSeek",
		"headlines", len(req.Headlines),
		"price_source", req.Price.SourceLabel())

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("deepseek API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("deepseek returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	d.logger.Debug("AI raw response", "content", raw)

	content := CleanBrief(raw)
	if content == "" {
		return nil, fmt.Errorf("deepseek returned an empty brief")
	}

	return &Brief{
		Content:     content,
		Model:       d.model,
		PriceSource: req.Price.SourceLabel(),
		GeneratedAt: d.now(),
	}, nil
}
