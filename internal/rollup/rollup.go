// Package rollup computes derived display values: asset counts through
// the location tree, task completion percentages, estimate totals, and
// cycle date buckets. Everything is recomputed from current rows; no
// cached column is trusted as a source of truth.
package rollup

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/models"
)

// DirectAssetCount counts active assets located directly at the location.
func DirectAssetCount(db *gorm.DB, locationID string) (int64, error) {
	if _, err := hierarchy.Get[models.Location](db, "location", locationID); err != nil {
		return 0, err
	}
	var count int64
	if err := db.Model(&models.Asset{}).
		Where("current_location_id = ? AND status = ?", locationID, models.AssetActive).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("rollup: direct asset count of %s: %w", locationID, err)
	}
	return count, nil
}

// TotalAssetCount counts active assets at the location and at every
// descendant location. The location tree is acyclic (enforced on write),
// so the walk is bounded; each asset is counted once.
func TotalAssetCount(db *gorm.DB, locationID string) (int64, error) {
	descendants, err := hierarchy.Descendants[models.Location](db, "location", locationID)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(descendants)+1)
	ids = append(ids, locationID)
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}

	var count int64
	if err := db.Model(&models.Asset{}).
		Where("current_location_id IN ? AND status = ?", ids, models.AssetActive).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("rollup: total asset count of %s: %w", locationID, err)
	}
	return count, nil
}

// TaskTally holds task totals for a plan or cycle scope.
type TaskTally struct {
	Total     int64
	Completed int64
}

// Progress returns completed/total as a percentage rounded to the
// nearest integer, 0 when the scope has no tasks.
func (t TaskTally) Progress() int {
	if t.Total == 0 {
		return 0
	}
	return int(math.Round(float64(t.Completed) / float64(t.Total) * 100))
}

// PlanTally tallies the tasks a plan owns directly via plan_id.
func PlanTally(db *gorm.DB, planID string) (TaskTally, error) {
	if _, err := hierarchy.Get[models.Plan](db, "plan", planID); err != nil {
		return TaskTally{}, err
	}
	return tally(db, "plan_id IN ?", []string{planID})
}

// RolledUpPlanTally tallies tasks owned by the plan and by every
// descendant plan. Kept distinct from PlanTally; serializers that report
// task_count use the direct tally.
func RolledUpPlanTally(db *gorm.DB, planID string) (TaskTally, error) {
	descendants, err := hierarchy.Descendants[models.Plan](db, "plan", planID)
	if err != nil {
		return TaskTally{}, err
	}
	ids := make([]string, 0, len(descendants)+1)
	ids = append(ids, planID)
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}
	return tally(db, "plan_id IN ?", ids)
}

// CycleTally tallies the tasks scheduled into a cycle.
func CycleTally(db *gorm.DB, cycleID string) (TaskTally, error) {
	var cycle models.Cycle
	if err := db.Where("id = ?", cycleID).First(&cycle).Error; err != nil {
		return TaskTally{}, cycleLookupErr(cycleID, err)
	}
	return tally(db, "cycle_id = ?", cycleID)
}

func tally(db *gorm.DB, cond string, arg interface{}) (TaskTally, error) {
	var t TaskTally
	if err := db.Model(&models.Task{}).Where(cond, arg).Count(&t.Total).Error; err != nil {
		return t, fmt.Errorf("rollup: tally total: %w", err)
	}
	if err := db.Model(&models.Task{}).Where(cond, arg).
		Where("state = ?", models.TaskDone).Count(&t.Completed).Error; err != nil {
		return t, fmt.Errorf("rollup: tally completed: %w", err)
	}
	return t, nil
}

// EstimateTotals holds summed task estimates in minutes for a scope.
type EstimateTotals struct {
	TotalMinutes     int
	CompletedMinutes int
}

// PlanEstimates sums estimates over the plan's directly-owned tasks.
func PlanEstimates(db *gorm.DB, planID string) (EstimateTotals, error) {
	if _, err := hierarchy.Get[models.Plan](db, "plan", planID); err != nil {
		return EstimateTotals{}, err
	}
	return estimates(db, "plan_id = ?", planID)
}

// CycleEstimates sums estimates over the cycle's scheduled tasks.
func CycleEstimates(db *gorm.DB, cycleID string) (EstimateTotals, error) {
	var cycle models.Cycle
	if err := db.Where("id = ?", cycleID).First(&cycle).Error; err != nil {
		return EstimateTotals{}, cycleLookupErr(cycleID, err)
	}
	return estimates(db, "cycle_id = ?", cycleID)
}

func estimates(db *gorm.DB, cond string, arg interface{}) (EstimateTotals, error) {
	var totals EstimateTotals
	if err := db.Model(&models.Task{}).Where(cond, arg).
		Select("COALESCE(SUM(estimate), 0)").Scan(&totals.TotalMinutes).Error; err != nil {
		return totals, fmt.Errorf("rollup: sum estimates: %w", err)
	}
	if err := db.Model(&models.Task{}).Where(cond, arg).
		Where("state = ?", models.TaskDone).
		Select("COALESCE(SUM(estimate), 0)").Scan(&totals.CompletedMinutes).Error; err != nil {
		return totals, fmt.Errorf("rollup: sum completed estimates: %w", err)
	}
	return totals, nil
}

func cycleLookupErr(cycleID string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("cycle", cycleID)
	}
	return fmt.Errorf("rollup: cycle %s: %w", cycleID, err)
}
