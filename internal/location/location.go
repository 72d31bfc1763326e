// Package location provides location lifecycle operations. Locations
// nest into a tree; asset counts roll up through it.
package location

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/models"
)

// CreateOpts holds parameters for creating a location.
type CreateOpts struct {
	Name      string
	Notes     string
	AreaAcres float64
	ParentID  *string
}

// Create creates a location.
func Create(db *gorm.DB, opts CreateOpts) (*models.Location, error) {
	if opts.Name == "" {
		return nil, apperr.Validation("required", "location name is required")
	}
	if opts.AreaAcres < 0 {
		return nil, apperr.Validation("area", "area must not be negative")
	}

	var loc *models.Location
	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.ParentID != nil {
			if _, err := hierarchy.Get[models.Location](tx, "location", *opts.ParentID); err != nil {
				return err
			}
		}
		id, err := models.UniqueID(tx, "loc", &models.Location{})
		if err != nil {
			return err
		}
		loc = &models.Location{
			ID:        id,
			Name:      opts.Name,
			Notes:     opts.Notes,
			AreaAcres: opts.AreaAcres,
			Status:    models.LocationActive,
			ParentID:  opts.ParentID,
		}
		if err := tx.Create(loc).Error; err != nil {
			return fmt.Errorf("location: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// Get retrieves a location by ID.
func Get(db *gorm.DB, id string) (*models.Location, error) {
	var loc models.Location
	if err := db.Where("id = ?", id).First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("location", id)
		}
		return nil, fmt.Errorf("location: get %s: %w", id, err)
	}
	return &loc, nil
}

// UpdateOpts holds optional field changes; nil fields are untouched.
type UpdateOpts struct {
	Name        *string
	Notes       *string
	AreaAcres   *float64
	ParentID    *string
	ClearParent bool
}

// Update applies a partial update. Parent changes go through the
// hierarchy cycle check.
func Update(db *gorm.DB, id string, opts UpdateOpts) (*models.Location, error) {
	var updated *models.Location
	err := db.Transaction(func(tx *gorm.DB) error {
		loc, err := Get(tx, id)
		if err != nil {
			return err
		}
		if opts.Name != nil {
			if *opts.Name == "" {
				return apperr.Validation("required", "location name is required")
			}
			loc.Name = *opts.Name
		}
		if opts.Notes != nil {
			loc.Notes = *opts.Notes
		}
		if opts.AreaAcres != nil {
			if *opts.AreaAcres < 0 {
				return apperr.Validation("area", "area must not be negative")
			}
			loc.AreaAcres = *opts.AreaAcres
		}
		if err := tx.Save(loc).Error; err != nil {
			return fmt.Errorf("location: update %s: %w", id, err)
		}

		if opts.ClearParent {
			if err := hierarchy.SetParent[models.Location](tx, "location", id, nil); err != nil {
				return err
			}
			loc.ParentID = nil
		} else if opts.ParentID != nil {
			if err := hierarchy.SetParent[models.Location](tx, "location", id, opts.ParentID); err != nil {
				return err
			}
			loc.ParentID = opts.ParentID
		}

		updated = loc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Archive soft-deletes a location. Locations that still host active
// assets cannot be archived.
func Archive(db *gorm.DB, id string) (*models.Location, error) {
	var archived *models.Location
	err := db.Transaction(func(tx *gorm.DB) error {
		loc, err := Get(tx, id)
		if err != nil {
			return err
		}
		if loc.Status == models.LocationArchived {
			archived = loc
			return nil
		}
		var assets int64
		if err := tx.Model(&models.Asset{}).
			Where("current_location_id = ? AND status = ?", id, models.AssetActive).
			Count(&assets).Error; err != nil {
			return fmt.Errorf("location: count assets: %w", err)
		}
		if assets > 0 {
			return apperr.Validation("in_use", "location %s still hosts %d active assets", id, assets)
		}
		now := time.Now().UTC()
		loc.Status = models.LocationArchived
		loc.ArchivedAt = &now
		if err := tx.Save(loc).Error; err != nil {
			return fmt.Errorf("location: archive %s: %w", id, err)
		}
		archived = loc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// ListFilters holds optional filters for listing locations.
type ListFilters struct {
	ParentID        string
	Roots           bool
	IncludeArchived bool
}

// List returns locations matching the filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]models.Location, error) {
	q := db.Model(&models.Location{})
	if !filters.IncludeArchived {
		q = q.Where("status = ?", models.LocationActive)
	}
	if filters.ParentID != "" {
		q = q.Where("parent_id = ?", filters.ParentID)
	}
	if filters.Roots {
		q = q.Where("parent_id IS NULL")
	}
	var locs []models.Location
	if err := q.Order("created_at DESC").Order("id DESC").Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("location: list: %w", err)
	}
	return locs, nil
}
