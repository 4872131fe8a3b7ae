package database

import (
	"fmt"

	"github.com/mainhusharm/main-launch/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates the tables owned by this service.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
