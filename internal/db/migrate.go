package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/models"
)

// AllModels returns every GORM model for migration, entities before the
// join tables that reference them.
func AllModels() []interface{} {
	return []interface{}{
		&models.Location{},
		&models.Asset{},
		&models.FarmLog{},
		&models.Cycle{},
		&models.Plan{},
		&models.Task{},
		&models.Tag{},
		&models.LogAsset{},
		&models.TaskAsset{},
		&models.TaskLocation{},
		&models.TaskLog{},
		&models.TaskTag{},
		&models.TaskRelation{},
		&models.PlanAsset{},
		&models.PlanLocation{},
		&models.PlanLog{},
		&models.PlanTaskRef{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
