package persistence

import (
	"fmt"

	"github.com/helixml/segalloc/internal/database"
)

// AutoMigrate creates or updates the tables for all models.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(&DocumentModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
