package feeds

import (
	"fmt"

	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/price"
)

// Sources builds the live price sources in the configured precedence order.
func Sources(cfg *config.Config, client *Client) ([]price.Source, error) {
	sources := make([]price.Source, 0, len(cfg.Sources.Order))
	for _, name := range cfg.Sources.Order {
		switch name {
		case config.SourceJin10:
			sources = append(sources, NewJin10Source(client, cfg.Sources.Jin10URL))
		case config.SourceSina:
			sources = append(sources, NewSinaSource(client, cfg.Sources.SinaURL, cfg.Sources.SinaReferer, cfg.AssumedUSDCNY()))
		default:
			return nil, fmt.Errorf("unknown price source %q", name)
		}
	}
	return sources, nil
}
