// Package farmlog provides log entry operations. Logs record typed
// farm events (activity, harvest, observation, input, maintenance,
// movement) and link to the assets they concern.
package farmlog

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/models"
)

// CreateOpts holds parameters for creating a log entry.
type CreateOpts struct {
	Name           string
	LogType        string
	Status         string // defaults to pending
	Notes          string
	Timestamp      time.Time // defaults to now
	FromLocationID *string   // movement only
	ToLocationID   *string   // movement only
	AssetIDs       []string
}

// Create records a log entry and its asset links in one transaction.
// Location endpoints are only accepted on movement logs.
func Create(db *gorm.DB, opts CreateOpts) (*models.FarmLog, error) {
	if opts.Name == "" {
		return nil, apperr.Validation("required", "log name is required")
	}
	if !models.ValidLogType(opts.LogType) {
		return nil, apperr.Validation("log_type", "unknown log type %q", opts.LogType)
	}
	if opts.Status == "" {
		opts.Status = models.LogPending
	}
	if opts.Status != models.LogPending && opts.Status != models.LogDone {
		return nil, apperr.Validation("status", "unknown log status %q", opts.Status)
	}
	if opts.LogType != models.LogMovement && (opts.FromLocationID != nil || opts.ToLocationID != nil) {
		return nil, apperr.Validation("locations", "only movement logs carry location endpoints")
	}
	if opts.LogType == models.LogMovement && opts.ToLocationID == nil {
		return nil, apperr.Validation("locations", "movement logs need a destination")
	}
	if opts.Timestamp.IsZero() {
		opts.Timestamp = time.Now().UTC()
	}

	var log *models.FarmLog
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, locID := range []*string{opts.FromLocationID, opts.ToLocationID} {
			if locID == nil {
				continue
			}
			if _, err := hierarchy.Get[models.Location](tx, "location", *locID); err != nil {
				return err
			}
		}

		id, err := models.UniqueID(tx, "log", &models.FarmLog{})
		if err != nil {
			return err
		}
		log = &models.FarmLog{
			ID:             id,
			Name:           opts.Name,
			LogType:        opts.LogType,
			Status:         opts.Status,
			Notes:          opts.Notes,
			Timestamp:      opts.Timestamp,
			FromLocationID: opts.FromLocationID,
			ToLocationID:   opts.ToLocationID,
		}
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("farmlog: create: %w", err)
		}
		for _, assetID := range opts.AssetIDs {
			if _, err := hierarchy.Get[models.Asset](tx, "asset", assetID); err != nil {
				return err
			}
			if err := tx.Create(&models.LogAsset{LogID: id, AssetID: assetID}).Error; err != nil {
				return fmt.Errorf("farmlog: link asset %s: %w", assetID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// Get retrieves a log entry by ID.
func Get(db *gorm.DB, id string) (*models.FarmLog, error) {
	var log models.FarmLog
	if err := db.Where("id = ?", id).First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("log", id)
		}
		return nil, fmt.Errorf("farmlog: get %s: %w", id, err)
	}
	return &log, nil
}

// MarkDone flips a pending log to done.
func MarkDone(db *gorm.DB, id string) (*models.FarmLog, error) {
	log, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if log.Status == models.LogDone {
		return log, nil
	}
	log.Status = models.LogDone
	if err := db.Save(log).Error; err != nil {
		return nil, fmt.Errorf("farmlog: mark done %s: %w", id, err)
	}
	return log, nil
}

// Assets returns the assets a log entry concerns.
func Assets(db *gorm.DB, id string) ([]models.Asset, error) {
	if _, err := Get(db, id); err != nil {
		return nil, err
	}
	var assets []models.Asset
	err := db.Model(&models.Asset{}).
		Joins("JOIN log_assets ON log_assets.asset_id = assets.id").
		Where("log_assets.log_id = ?", id).
		Order("assets.created_at DESC").
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("farmlog: assets of %s: %w", id, err)
	}
	return assets, nil
}

// ListFilters holds optional filters for listing log entries.
type ListFilters struct {
	LogType string
	Status  string
	AssetID string
	Since   time.Time
	Until   time.Time
}

// List returns log entries matching the filters, most recent event
// first.
func List(db *gorm.DB, filters ListFilters) ([]models.FarmLog, error) {
	q := db.Model(&models.FarmLog{})
	if filters.LogType != "" {
		q = q.Where("log_type = ?", filters.LogType)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.AssetID != "" {
		q = q.Where("id IN (?)",
			db.Table("log_assets").Select("log_id").Where("asset_id = ?", filters.AssetID))
	}
	if !filters.Since.IsZero() {
		q = q.Where("timestamp >= ?", filters.Since)
	}
	if !filters.Until.IsZero() {
		q = q.Where("timestamp <= ?", filters.Until)
	}
	var logs []models.FarmLog
	if err := q.Order("timestamp DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("farmlog: list: %w", err)
	}
	return logs, nil
}
