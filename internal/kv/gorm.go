package kv

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradelog/internal/models"
)

// GormStore keeps documents in the documents table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, int64, bool, error) {
	var item models.Document
	err := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("key = ?", key).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	return []byte(item.Value), item.Version, true, nil
}

func (s *GormStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	now := time.Now().UTC()
	if expectedVersion == 0 {
		item := &models.Document{
			Key:       key,
			Value:     datatypes.JSON(value),
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
			Create(item)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, ErrVersionConflict
		}
		return 1, nil
	}
	next := expectedVersion + 1
	res := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("key = ? AND version = ?", key, expectedVersion).
		Updates(map[string]any{
			"value":      datatypes.JSON(value),
			"version":    next,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrVersionConflict
	}
	return next, nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&models.Document{}).Error
}
