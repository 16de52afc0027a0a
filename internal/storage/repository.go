package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record or user does not exist for the caller.
var ErrNotFound = errors.New("not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Users

func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) SaveUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *Repository) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Repository) FindUserByPhone(ctx context.Context, phone string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Repository) FindUserByToken(ctx context.Context, token string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

// Gold records

func (r *Repository) InsertRecord(ctx context.Context, rec *GoldRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListByOwner returns the owner's records newest trade first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]GoldRecord, error) {
	var records []GoldRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("trade_time DESC").Order("created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *Repository) GetRecord(ctx context.Context, ownerID, id string) (*GoldRecord, error) {
	var rec GoldRecord
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&rec).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

// UpdateRecord fully replaces the mutable fields of an owned record.
func (r *Repository) UpdateRecord(ctx context.Context, ownerID string, rec *GoldRecord) error {
	res := r.db.WithContext(ctx).Model(&GoldRecord{}).
		Where("id = ? AND user_id = ?", rec.ID, ownerID).
		Updates(map[string]interface{}{
			"trade_type":  rec.TradeType,
			"category":    rec.Category,
			"weight":      rec.Weight,
			"unit_price":  rec.UnitPrice,
			"total_price": rec.TotalPrice,
			"trade_time":  rec.TradeTime,
			"channel":     rec.Channel,
			"remark":      rec.Remark,
		})
	if res.Error != nil {
		return fmt.Errorf("update record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&GoldRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAllRecords returns every record grouped by owner, for the admin overview.
func (r *Repository) ListAllRecords(ctx context.Context) (map[string][]GoldRecord, error) {
	var records []GoldRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	byOwner := make(map[string][]GoldRecord)
	for _, rec := range records {
		byOwner[rec.UserID] = append(byOwner[rec.UserID], rec)
	}
	return byOwner, nil
}

// Price snapshots

func (r *Repository) SavePriceSnapshot(ctx context.Context, snapshot *PriceSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *Repository) LatestPriceSnapshot(ctx context.Context) (*PriceSnapshot, error) {
	var snapshot PriceSnapshot
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").First(&snapshot).Error; err != nil {
		return nil, notFound(err)
	}
	return &snapshot, nil
}
