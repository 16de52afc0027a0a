package records

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/storage"
)

// Directory lists every user and record, for operators only.
type Directory interface {
	ListUsers(ctx context.Context) ([]storage.User, error)
	ListAllRecords(ctx context.Context) (map[string][]storage.GoldRecord, error)
}

type UserPosition struct {
	UserID      string          `json:"userID"`
	Phone       string          `json:"phone"`
	Nickname    string          `json:"nickname"`
	CreateTime  time.Time       `json:"createTime"`
	TotalWeight decimal.Decimal `json:"totalWeight"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	Records     int             `json:"records"`
}

// Overview returns every user, newest first, with a rounded position summary.
func (s *Service) Overview(ctx context.Context, dir Directory) ([]UserPosition, error) {
	users, err := dir.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	byOwner, err := dir.ListAllRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	result := make([]UserPosition, 0, len(users))
	for _, u := range users {
		recs := byOwner[u.ID]
		summary := s.aggregate(u.ID, recs).Rounded()
		result = append(result, UserPosition{
			UserID:      u.ID,
			Phone:       u.Phone,
			Nickname:    u.Nickname,
			CreateTime:  u.CreatedAt,
			TotalWeight: summary.NetWeightGrams,
			TotalCost:   summary.NetInvestment,
			Records:     len(recs),
		})
	}
	return result, nil
}
