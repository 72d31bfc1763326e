package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hollowoak/farmhand/internal/models"
)

// seedLocations are the starter locations every fresh farm gets.
var seedLocations = []models.Location{
	{ID: "loc-seed1", Name: "Farm", Status: "active"},
	{ID: "loc-seed2", Name: "North field", Status: "active", ParentID: strptr("loc-seed1")},
	{ID: "loc-seed3", Name: "Barn", Status: "active", ParentID: strptr("loc-seed1")},
}

// SeedStarterData upserts a minimal location tree and a default plan so
// a fresh database is immediately usable. Existing rows are left alone.
func SeedStarterData(db *gorm.DB) error {
	for _, loc := range seedLocations {
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&loc)
		if result.Error != nil {
			return fmt.Errorf("db: seed location %q: %w", loc.Name, result.Error)
		}
	}
	plan := models.Plan{ID: "plan-seed1", Name: "Inbox", Status: models.PlanActive}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&plan).Error; err != nil {
		return fmt.Errorf("db: seed plan %q: %w", plan.Name, err)
	}
	return nil
}

func strptr(s string) *string { return &s }
