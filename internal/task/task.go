// Package task provides task lifecycle operations. Every task belongs
// to exactly one plan; tasks may nest as subtasks and schedule into
// cycles.
package task

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/models"
	"github.com/hollowoak/farmhand/internal/rollup"
)

// CreateOpts holds parameters for creating a task.
type CreateOpts struct {
	Title       string
	Description string
	State       string // defaults to backlog
	Estimate    *int   // minutes
	TargetDate  *time.Time
	PlanID      string // required
	CycleID     *string
	ParentID    *string
	AssetIDs    []string
	LocationIDs []string
	LogIDs      []string
	TagIDs      []string
}

// Create creates a task and its mention links in one transaction.
func Create(db *gorm.DB, opts CreateOpts) (*models.Task, error) {
	if opts.Title == "" {
		return nil, apperr.Validation("required", "task title is required")
	}
	if opts.PlanID == "" {
		return nil, apperr.Validation("required", "every task must belong to a plan")
	}
	if opts.State == "" {
		opts.State = models.TaskBacklog
	}
	if !models.ValidTaskState(opts.State) {
		return nil, apperr.Validation("state", "unknown task state %q", opts.State)
	}
	if opts.Estimate != nil && *opts.Estimate < 0 {
		return nil, apperr.Validation("estimate", "estimate must not be negative")
	}

	var task *models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := hierarchy.Get[models.Plan](tx, "plan", opts.PlanID); err != nil {
			return err
		}
		if opts.CycleID != nil {
			var count int64
			if err := tx.Model(&models.Cycle{}).Where("id = ?", *opts.CycleID).Count(&count).Error; err != nil {
				return fmt.Errorf("task: check cycle: %w", err)
			}
			if count == 0 {
				return apperr.NotFound("cycle", *opts.CycleID)
			}
		}
		if opts.ParentID != nil {
			if _, err := hierarchy.Get[models.Task](tx, "task", *opts.ParentID); err != nil {
				return err
			}
		}

		id, err := models.UniqueID(tx, "task", &models.Task{})
		if err != nil {
			return err
		}
		task = &models.Task{
			ID:          id,
			Title:       opts.Title,
			Description: opts.Description,
			State:       opts.State,
			Estimate:    opts.Estimate,
			TargetDate:  opts.TargetDate,
			PlanID:      opts.PlanID,
			CycleID:     opts.CycleID,
			ParentID:    opts.ParentID,
		}
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("task: create: %w", err)
		}

		return linkMentions(tx, id, opts.AssetIDs, opts.LocationIDs, opts.LogIDs, opts.TagIDs)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// linkMentions inserts join rows, verifying each referenced entity
// exists so a bad id fails the whole create.
func linkMentions(tx *gorm.DB, taskID string, assetIDs, locationIDs, logIDs, tagIDs []string) error {
	for _, assetID := range assetIDs {
		if _, err := hierarchy.Get[models.Asset](tx, "asset", assetID); err != nil {
			return err
		}
		if err := tx.Create(&models.TaskAsset{TaskID: taskID, AssetID: assetID}).Error; err != nil {
			return fmt.Errorf("task: link asset %s: %w", assetID, err)
		}
	}
	for _, locationID := range locationIDs {
		if _, err := hierarchy.Get[models.Location](tx, "location", locationID); err != nil {
			return err
		}
		if err := tx.Create(&models.TaskLocation{TaskID: taskID, LocationID: locationID}).Error; err != nil {
			return fmt.Errorf("task: link location %s: %w", locationID, err)
		}
	}
	for _, logID := range logIDs {
		var count int64
		if err := tx.Model(&models.FarmLog{}).Where("id = ?", logID).Count(&count).Error; err != nil {
			return fmt.Errorf("task: check log: %w", err)
		}
		if count == 0 {
			return apperr.NotFound("log", logID)
		}
		if err := tx.Create(&models.TaskLog{TaskID: taskID, LogID: logID}).Error; err != nil {
			return fmt.Errorf("task: link log %s: %w", logID, err)
		}
	}
	for _, tagID := range tagIDs {
		var count int64
		if err := tx.Model(&models.Tag{}).Where("id = ?", tagID).Count(&count).Error; err != nil {
			return fmt.Errorf("task: check tag: %w", err)
		}
		if count == 0 {
			return apperr.NotFound("tag", tagID)
		}
		if err := tx.Create(&models.TaskTag{TaskID: taskID, TagID: tagID}).Error; err != nil {
			return fmt.Errorf("task: link tag %s: %w", tagID, err)
		}
	}
	return nil
}

// Get retrieves a task by ID.
func Get(db *gorm.DB, id string) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("task", id)
		}
		return nil, fmt.Errorf("task: get %s: %w", id, err)
	}
	return &task, nil
}

// UpdateOpts holds optional field changes; nil fields are untouched.
// ClearCycle and ClearParent explicitly null the respective links.
type UpdateOpts struct {
	Title       *string
	Description *string
	State       *string
	Estimate    *int
	TargetDate  *time.Time
	PlanID      *string
	CycleID     *string
	ClearCycle  bool
	ParentID    *string
	ClearParent bool
}

// Update applies a partial update. A parent change goes through the
// hierarchy cycle check; plan and cycle changes are validated against
// existing rows.
func Update(db *gorm.DB, id string, opts UpdateOpts) (*models.Task, error) {
	var updated *models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := Get(tx, id)
		if err != nil {
			return err
		}

		if opts.Title != nil {
			if *opts.Title == "" {
				return apperr.Validation("required", "task title is required")
			}
			task.Title = *opts.Title
		}
		if opts.Description != nil {
			task.Description = *opts.Description
		}
		if opts.State != nil {
			if !models.ValidTaskState(*opts.State) {
				return apperr.Validation("state", "unknown task state %q", *opts.State)
			}
			// Any state may move to any other.
			task.State = *opts.State
			if *opts.State == models.TaskDone && task.CompletedAt == nil {
				now := time.Now().UTC()
				task.CompletedAt = &now
			}
			if *opts.State != models.TaskDone {
				task.CompletedAt = nil
			}
		}
		if opts.Estimate != nil {
			if *opts.Estimate < 0 {
				return apperr.Validation("estimate", "estimate must not be negative")
			}
			task.Estimate = opts.Estimate
		}
		if opts.TargetDate != nil {
			task.TargetDate = opts.TargetDate
		}
		if opts.PlanID != nil {
			if _, err := hierarchy.Get[models.Plan](tx, "plan", *opts.PlanID); err != nil {
				return err
			}
			task.PlanID = *opts.PlanID
		}
		if opts.ClearCycle {
			task.CycleID = nil
		} else if opts.CycleID != nil {
			var count int64
			if err := tx.Model(&models.Cycle{}).Where("id = ?", *opts.CycleID).Count(&count).Error; err != nil {
				return fmt.Errorf("task: check cycle: %w", err)
			}
			if count == 0 {
				return apperr.NotFound("cycle", *opts.CycleID)
			}
			task.CycleID = opts.CycleID
		}

		if err := tx.Save(task).Error; err != nil {
			return fmt.Errorf("task: update %s: %w", id, err)
		}

		// Parent changes run the full cycle check after the field save so
		// the subtree walk sees the persisted row.
		if opts.ClearParent {
			if err := hierarchy.SetParent[models.Task](tx, "task", id, nil); err != nil {
				return err
			}
			task.ParentID = nil
		} else if opts.ParentID != nil {
			if err := hierarchy.SetParent[models.Task](tx, "task", id, opts.ParentID); err != nil {
				return err
			}
			task.ParentID = opts.ParentID
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete marks a task done.
func Complete(db *gorm.DB, id string) (*models.Task, error) {
	done := models.TaskDone
	return Update(db, id, UpdateOpts{State: &done})
}

// MoveToPlan reassigns the task's owning plan.
func MoveToPlan(db *gorm.DB, id, planID string) (*models.Task, error) {
	return Update(db, id, UpdateOpts{PlanID: &planID})
}

// ScheduleToCycle schedules the task into a cycle, or unschedules it
// when cycleID is nil.
func ScheduleToCycle(db *gorm.DB, id string, cycleID *string) (*models.Task, error) {
	if cycleID == nil {
		return Update(db, id, UpdateOpts{ClearCycle: true})
	}
	return Update(db, id, UpdateOpts{CycleID: cycleID})
}

// Delete removes a task and its mention links. Subtasks are left in
// place with their parent_id dangling; relations referencing the task
// are removed with it.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}
		for _, join := range []interface{}{
			&models.TaskAsset{}, &models.TaskLocation{}, &models.TaskLog{}, &models.TaskTag{},
		} {
			if err := tx.Where("task_id = ?", id).Delete(join).Error; err != nil {
				return fmt.Errorf("task: delete links of %s: %w", id, err)
			}
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.PlanTaskRef{}).Error; err != nil {
			return fmt.Errorf("task: delete plan refs of %s: %w", id, err)
		}
		if err := tx.Where("source_task_id = ? OR target_task_id = ?", id, id).
			Delete(&models.TaskRelation{}).Error; err != nil {
			return fmt.Errorf("task: delete relations of %s: %w", id, err)
		}
		if err := tx.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("task: delete %s: %w", id, err)
		}
		return nil
	})
}

// ListFilters holds optional filters for listing tasks. Boolean filters
// compose with AND.
type ListFilters struct {
	State       string
	PlanID      string
	CycleID     string
	ParentID    string
	Unscheduled bool
	Active      bool
	Completed   bool
	Blocked     bool
	Overdue     bool
	Now         time.Time // reference time for Overdue; zero means time.Now
}

// List returns tasks matching the filters, newest first.
func List(db *gorm.DB, filters ListFilters) ([]models.Task, error) {
	q := db.Model(&models.Task{})

	if filters.State != "" {
		q = q.Where("state = ?", filters.State)
	}
	if filters.PlanID != "" {
		q = q.Where("plan_id = ?", filters.PlanID)
	}
	if filters.CycleID != "" {
		q = q.Where("cycle_id = ?", filters.CycleID)
	}
	if filters.ParentID != "" {
		q = q.Where("parent_id = ?", filters.ParentID)
	}
	if filters.Unscheduled {
		q = q.Where("cycle_id IS NULL")
	}
	if filters.Active {
		q = q.Where("state IN ?", []string{models.TaskTodo, models.TaskInProgress})
	}
	if filters.Completed {
		q = q.Where("state = ?", models.TaskDone)
	}
	if filters.Overdue {
		now := filters.Now
		if now.IsZero() {
			now = time.Now()
		}
		q = q.Where("target_date < ? AND state NOT IN ?",
			rollup.DateOf(now), []string{models.TaskDone, models.TaskCancelled})
	}
	if filters.Blocked {
		q = q.Where("id IN (?)",
			db.Table("task_relations").
				Select("task_relations.target_task_id").
				Joins("JOIN tasks blocker ON task_relations.source_task_id = blocker.id").
				Where("task_relations.relation_type = ?", models.RelationBlocks).
				Where("blocker.state NOT IN ?", []string{models.TaskDone, models.TaskCancelled}),
		)
	}

	var tasks []models.Task
	if err := q.Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list: %w", err)
	}
	return tasks, nil
}
