// Package refindex resolves cross-entity mentions in both directions:
// which entities a plan references, and which tasks/plans reference a
// given asset, location, or log. It is a read-only projection over the
// join tables; nothing here mutates state.
//
// Lists feeding UI indexes are capped at DisplayLimit entries; the
// counts alongside them are always the true join-table cardinality.
package refindex

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/models"
)

// DisplayLimit caps reference lists returned for display.
const DisplayLimit = 20

// BackRefs holds the tasks and plans referencing a single entity.
type BackRefs struct {
	Tasks     []models.Task
	TaskCount int64
	Plans     []models.Plan
	PlanCount int64
}

// PlanRefs holds everything a plan references.
type PlanRefs struct {
	Assets        []models.Asset
	AssetCount    int64
	Locations     []models.Location
	LocationCount int64
	Logs          []models.FarmLog
	LogCount      int64
	// Tasks cross-linked via plan_task_refs, not the tasks the plan owns.
	Tasks     []models.Task
	TaskCount int64
	// Child plans.
	Plans     []models.Plan
	PlanCount int64
}

// ForAsset returns the tasks and plans whose join tables point at the asset.
func ForAsset(db *gorm.DB, assetID string) (*BackRefs, error) {
	if _, err := hierarchy.Get[models.Asset](db, "asset", assetID); err != nil {
		return nil, err
	}
	return backRefs(db, "task_assets", "plan_assets", "asset_id", assetID)
}

// ForLocation returns the tasks and plans whose join tables point at the location.
func ForLocation(db *gorm.DB, locationID string) (*BackRefs, error) {
	if _, err := hierarchy.Get[models.Location](db, "location", locationID); err != nil {
		return nil, err
	}
	return backRefs(db, "task_locations", "plan_locations", "location_id", locationID)
}

// ForLog returns the tasks and plans whose join tables point at the log.
func ForLog(db *gorm.DB, logID string) (*BackRefs, error) {
	var log models.FarmLog
	if err := db.Where("id = ?", logID).First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("log", logID)
		}
		return nil, fmt.Errorf("refindex: log %s: %w", logID, err)
	}
	return backRefs(db, "task_logs", "plan_logs", "log_id", logID)
}

// ForPlan returns the entities a plan mentions: assets, locations, logs,
// cross-linked tasks, and child plans.
func ForPlan(db *gorm.DB, planID string) (*PlanRefs, error) {
	if _, err := hierarchy.Get[models.Plan](db, "plan", planID); err != nil {
		return nil, err
	}

	refs := &PlanRefs{}
	var err error

	refs.AssetCount, err = joinCount(db, "plan_assets", "plan_id", planID)
	if err != nil {
		return nil, err
	}
	if err := joined(db, &refs.Assets, "assets", "plan_assets", "asset_id", "plan_id", planID); err != nil {
		return nil, err
	}

	refs.LocationCount, err = joinCount(db, "plan_locations", "plan_id", planID)
	if err != nil {
		return nil, err
	}
	if err := joined(db, &refs.Locations, "locations", "plan_locations", "location_id", "plan_id", planID); err != nil {
		return nil, err
	}

	refs.LogCount, err = joinCount(db, "plan_logs", "plan_id", planID)
	if err != nil {
		return nil, err
	}
	if err := joined(db, &refs.Logs, "farm_logs", "plan_logs", "log_id", "plan_id", planID); err != nil {
		return nil, err
	}

	refs.TaskCount, err = joinCount(db, "plan_task_refs", "plan_id", planID)
	if err != nil {
		return nil, err
	}
	if err := joined(db, &refs.Tasks, "tasks", "plan_task_refs", "task_id", "plan_id", planID); err != nil {
		return nil, err
	}

	if err := db.Model(&models.Plan{}).Where("parent_id = ?", planID).Count(&refs.PlanCount).Error; err != nil {
		return nil, fmt.Errorf("refindex: child plan count of %s: %w", planID, err)
	}
	if err := db.Where("parent_id = ?", planID).
		Order("created_at DESC").Order("id DESC").
		Limit(DisplayLimit).Find(&refs.Plans).Error; err != nil {
		return nil, fmt.Errorf("refindex: child plans of %s: %w", planID, err)
	}

	return refs, nil
}

func backRefs(db *gorm.DB, taskJoin, planJoin, column, id string) (*BackRefs, error) {
	refs := &BackRefs{}
	var err error

	refs.TaskCount, err = joinCount(db, taskJoin, column, id)
	if err != nil {
		return nil, err
	}
	if err := joined(db, &refs.Tasks, "tasks", taskJoin, "task_id", column, id); err != nil {
		return nil, err
	}

	refs.PlanCount, err = joinCount(db, planJoin, column, id)
	if err != nil {
		return nil, err
	}
	if err := joined(db, &refs.Plans, "plans", planJoin, "plan_id", column, id); err != nil {
		return nil, err
	}

	return refs, nil
}

// joinCount returns the true cardinality of join rows for an entity,
// independent of DisplayLimit.
func joinCount(db *gorm.DB, joinTable, column, id string) (int64, error) {
	var count int64
	if err := db.Table(joinTable).Where(column+" = ?", id).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("refindex: count %s for %s: %w", joinTable, id, err)
	}
	return count, nil
}

// joined fills dest with the referenced rows, newest-first, capped at
// DisplayLimit.
func joined(db *gorm.DB, dest interface{}, table, joinTable, refColumn, ownerColumn, id string) error {
	join := fmt.Sprintf("JOIN %s ref ON ref.%s = %s.id", joinTable, refColumn, table)
	if err := db.Table(table).
		Joins(join).
		Where("ref."+ownerColumn+" = ?", id).
		Order(table + ".created_at DESC").Order(table + ".id DESC").
		Limit(DisplayLimit).
		Find(dest).Error; err != nil {
		return fmt.Errorf("refindex: list %s via %s for %s: %w", table, joinTable, id, err)
	}
	return nil
}
