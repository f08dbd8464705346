package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document stores one named collection for the postgres document store.
type Document struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Key     string         `gorm:"type:varchar(160);not null;uniqueIndex"`
	Value   datatypes.JSON `gorm:"type:jsonb;not null"`
	Version int64          `gorm:"not null;default:1"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime;index"`
}

func (Document) TableName() string {
	return "documents"
}
