package db

import (
	"tradelog/internal/models"
)

// AutoMigrate creates the documents table backing the postgres store. Data
// migrations over the stored documents live in internal/migration.
func (d *DB) AutoMigrate() error {
	if d == nil || d.Gorm == nil {
		return nil
	}
	return d.Gorm.AutoMigrate(&models.Document{})
}
