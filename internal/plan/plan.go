// Package plan provides plan lifecycle operations. Plans collect tasks,
// may nest under a parent plan, and carry typed links to the farm
// entities they touch.
package plan

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/models"
)

// CreateOpts holds parameters for creating a plan.
type CreateOpts struct {
	Name        string
	Description string
	Status      string // defaults to planned
	ParentID    *string
	AssetIDs    []string
	LocationIDs []string
	LogIDs      []string
	TaskIDs     []string // cross-plan task references
}

// Create creates a plan and its links in one transaction.
func Create(db *gorm.DB, opts CreateOpts) (*models.Plan, error) {
	if opts.Name == "" {
		return nil, apperr.Validation("required", "plan name is required")
	}
	if opts.Status == "" {
		opts.Status = models.PlanPlanned
	}
	if !models.ValidPlanStatus(opts.Status) {
		return nil, apperr.Validation("status", "unknown plan status %q", opts.Status)
	}

	var plan *models.Plan
	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.ParentID != nil {
			if _, err := hierarchy.Get[models.Plan](tx, "plan", *opts.ParentID); err != nil {
				return err
			}
		}

		id, err := models.UniqueID(tx, "plan", &models.Plan{})
		if err != nil {
			return err
		}
		plan = &models.Plan{
			ID:          id,
			Name:        opts.Name,
			Description: opts.Description,
			Status:      opts.Status,
			ParentID:    opts.ParentID,
		}
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("plan: create: %w", err)
		}
		return linkMentions(tx, id, opts.AssetIDs, opts.LocationIDs, opts.LogIDs, opts.TaskIDs)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func linkMentions(tx *gorm.DB, planID string, assetIDs, locationIDs, logIDs, taskIDs []string) error {
	for _, assetID := range assetIDs {
		if _, err := hierarchy.Get[models.Asset](tx, "asset", assetID); err != nil {
			return err
		}
		if err := tx.Create(&models.PlanAsset{PlanID: planID, AssetID: assetID}).Error; err != nil {
			return fmt.Errorf("plan: link asset %s: %w", assetID, err)
		}
	}
	for _, locationID := range locationIDs {
		if _, err := hierarchy.Get[models.Location](tx, "location", locationID); err != nil {
			return err
		}
		if err := tx.Create(&models.PlanLocation{PlanID: planID, LocationID: locationID}).Error; err != nil {
			return fmt.Errorf("plan: link location %s: %w", locationID, err)
		}
	}
	for _, logID := range logIDs {
		var count int64
		if err := tx.Model(&models.FarmLog{}).Where("id = ?", logID).Count(&count).Error; err != nil {
			return fmt.Errorf("plan: check log: %w", err)
		}
		if count == 0 {
			return apperr.NotFound("log", logID)
		}
		if err := tx.Create(&models.PlanLog{PlanID: planID, LogID: logID}).Error; err != nil {
			return fmt.Errorf("plan: link log %s: %w", logID, err)
		}
	}
	for _, taskID := range taskIDs {
		if err := AddTaskRef(tx, planID, taskID); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a plan by ID.
func Get(db *gorm.DB, id string) (*models.Plan, error) {
	var plan models.Plan
	if err := db.Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("plan", id)
		}
		return nil, fmt.Errorf("plan: get %s: %w", id, err)
	}
	return &plan, nil
}

// UpdateOpts holds optional field changes; nil fields are untouched.
type UpdateOpts struct {
	Name        *string
	Description *string
	Status      *string
	ParentID    *string
	ClearParent bool
}

// Update applies a partial update. Parent changes go through the
// hierarchy cycle check.
func Update(db *gorm.DB, id string, opts UpdateOpts) (*models.Plan, error) {
	var updated *models.Plan
	err := db.Transaction(func(tx *gorm.DB) error {
		plan, err := Get(tx, id)
		if err != nil {
			return err
		}
		if opts.Name != nil {
			if *opts.Name == "" {
				return apperr.Validation("required", "plan name is required")
			}
			plan.Name = *opts.Name
		}
		if opts.Description != nil {
			plan.Description = *opts.Description
		}
		if opts.Status != nil {
			if !models.ValidPlanStatus(*opts.Status) {
				return apperr.Validation("status", "unknown plan status %q", *opts.Status)
			}
			plan.Status = *opts.Status
		}
		if err := tx.Save(plan).Error; err != nil {
			return fmt.Errorf("plan: update %s: %w", id, err)
		}

		if opts.ClearParent {
			if err := hierarchy.SetParent[models.Plan](tx, "plan", id, nil); err != nil {
				return err
			}
			plan.ParentID = nil
		} else if opts.ParentID != nil {
			if err := hierarchy.SetParent[models.Plan](tx, "plan", id, opts.ParentID); err != nil {
				return err
			}
			plan.ParentID = opts.ParentID
		}

		updated = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddTaskRef records a cross-plan task reference. The task keeps its
// owning plan; the reference only marks it as relevant to this plan.
func AddTaskRef(db *gorm.DB, planID, taskID string) error {
	if _, err := Get(db, planID); err != nil {
		return err
	}
	var count int64
	if err := db.Model(&models.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
		return fmt.Errorf("plan: check task: %w", err)
	}
	if count == 0 {
		return apperr.NotFound("task", taskID)
	}
	if err := db.Model(&models.PlanTaskRef{}).
		Where("plan_id = ? AND task_id = ?", planID, taskID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("plan: check task ref: %w", err)
	}
	if count > 0 {
		return apperr.Validation("duplicate", "plan %s already references task %s", planID, taskID)
	}
	if err := db.Create(&models.PlanTaskRef{PlanID: planID, TaskID: taskID}).Error; err != nil {
		return fmt.Errorf("plan: add task ref: %w", err)
	}
	return nil
}

// RemoveTaskRef drops a cross-plan task reference.
func RemoveTaskRef(db *gorm.DB, planID, taskID string) error {
	res := db.Where("plan_id = ? AND task_id = ?", planID, taskID).Delete(&models.PlanTaskRef{})
	if res.Error != nil {
		return fmt.Errorf("plan: remove task ref: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("plan task reference", planID+"/"+taskID)
	}
	return nil
}

// Delete removes a plan and its links. Plans that still own tasks
// cannot be deleted; child plans are left in place with a dangling
// parent_id.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}
		var tasks int64
		if err := tx.Model(&models.Task{}).Where("plan_id = ?", id).Count(&tasks).Error; err != nil {
			return fmt.Errorf("plan: count tasks: %w", err)
		}
		if tasks > 0 {
			return apperr.Validation("in_use", "plan %s still owns %d tasks", id, tasks)
		}
		for _, join := range []interface{}{
			&models.PlanAsset{}, &models.PlanLocation{}, &models.PlanLog{}, &models.PlanTaskRef{},
		} {
			if err := tx.Where("plan_id = ?", id).Delete(join).Error; err != nil {
				return fmt.Errorf("plan: delete links of %s: %w", id, err)
			}
		}
		if err := tx.Delete(&models.Plan{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("plan: delete %s: %w", id, err)
		}
		return nil
	})
}

// ListFilters holds optional filters for listing plans.
type ListFilters struct {
	Status   string
	ParentID string
	Roots    bool // only plans with no parent
}

// List returns plans matching the filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]models.Plan, error) {
	q := db.Model(&models.Plan{})
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.ParentID != "" {
		q = q.Where("parent_id = ?", filters.ParentID)
	}
	if filters.Roots {
		q = q.Where("parent_id IS NULL")
	}
	var plans []models.Plan
	if err := q.Order("created_at DESC").Order("id DESC").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("plan: list: %w", err)
	}
	return plans, nil
}
