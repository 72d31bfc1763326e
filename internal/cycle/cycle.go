// Package cycle manages scheduling windows. Windows never overlap;
// finding the current cycle is a pure read, and creating a missing one
// is a separate, explicit call.
package cycle

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/models"
	"github.com/hollowoak/farmhand/internal/rollup"
)

// DefaultDurationDays is the window length used when a cycle is created
// implicitly by EnsureCurrent.
const DefaultDurationDays = 7

// CreateOpts holds parameters for creating a cycle.
type CreateOpts struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// Create creates a cycle after validating its window: start must not be
// after end, and the window must not overlap any existing cycle.
func Create(db *gorm.DB, opts CreateOpts) (*models.Cycle, error) {
	if opts.Name == "" {
		return nil, apperr.Validation("required", "cycle name is required")
	}
	start := rollup.DateOf(opts.StartDate)
	end := rollup.DateOf(opts.EndDate)
	if end.Before(start) {
		return nil, apperr.Validation("window", "end date %s before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var cycle *models.Cycle
	err := db.Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		if err := tx.Model(&models.Cycle{}).
			Where("start_date <= ? AND end_date >= ?", end, start).
			Count(&overlapping).Error; err != nil {
			return fmt.Errorf("cycle: check overlap: %w", err)
		}
		if overlapping > 0 {
			return apperr.Validation("overlap", "window %s..%s overlaps an existing cycle",
				start.Format("2006-01-02"), end.Format("2006-01-02"))
		}

		id, err := models.UniqueID(tx, "cycle", &models.Cycle{})
		if err != nil {
			return err
		}
		cycle = &models.Cycle{ID: id, Name: opts.Name, StartDate: start, EndDate: end}
		if err := tx.Create(cycle).Error; err != nil {
			return fmt.Errorf("cycle: create: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// Get retrieves a cycle by ID.
func Get(db *gorm.DB, id string) (*models.Cycle, error) {
	var c models.Cycle
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cycle", id)
		}
		return nil, fmt.Errorf("cycle: get %s: %w", id, err)
	}
	return &c, nil
}

// ListFilter selects which date bucket to list.
type ListFilter int

const (
	ListAll ListFilter = iota
	ListCurrent
	ListPast
	ListFuture
)

// List returns cycles in the given bucket relative to now, ordered by
// start date.
func List(db *gorm.DB, filter ListFilter, now time.Time) ([]models.Cycle, error) {
	today := rollup.DateOf(now)
	q := db.Model(&models.Cycle{}).Order("start_date ASC")
	switch filter {
	case ListCurrent:
		q = q.Where("start_date <= ? AND end_date >= ?", today, today)
	case ListPast:
		q = q.Where("end_date < ?", today)
	case ListFuture:
		q = q.Where("start_date > ?", today)
	}
	var cycles []models.Cycle
	if err := q.Find(&cycles).Error; err != nil {
		return nil, fmt.Errorf("cycle: list: %w", err)
	}
	return cycles, nil
}

// FindCurrent returns the cycle whose window contains now. It is a pure
// read: when no such cycle exists it returns a NotFoundError and writes
// nothing. Use EnsureCurrent to create one.
func FindCurrent(db *gorm.DB, now time.Time) (*models.Cycle, error) {
	today := rollup.DateOf(now)
	var c models.Cycle
	err := db.Where("start_date <= ? AND end_date >= ?", today, today).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("cycle", "current")
	}
	if err != nil {
		return nil, fmt.Errorf("cycle: find current: %w", err)
	}
	return &c, nil
}

// EnsureCurrent returns the current cycle, creating a default-length one
// starting today when none exists. The write is explicit here, never
// hidden inside a read path.
func EnsureCurrent(db *gorm.DB, now time.Time) (*models.Cycle, error) {
	current, err := FindCurrent(db, now)
	if err == nil {
		return current, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	start := rollup.DateOf(now)
	end := start.AddDate(0, 0, DefaultDurationDays-1)
	return Create(db, CreateOpts{
		Name:      "Cycle of " + start.Format("2006-01-02"),
		StartDate: start,
		EndDate:   end,
	})
}

// Generate creates count consecutive cycles of durationDays each,
// starting at startDate. Names are "Cycle N" offset from the existing
// cycle count. All-or-nothing: one overlap fails the whole batch.
func Generate(db *gorm.DB, startDate time.Time, count, durationDays int) ([]models.Cycle, error) {
	if count <= 0 {
		return nil, apperr.Validation("count", "cycle count must be positive, got %d", count)
	}
	if durationDays <= 0 {
		return nil, apperr.Validation("duration", "cycle duration must be positive, got %d days", durationDays)
	}

	var created []models.Cycle
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Cycle{}).Count(&existing).Error; err != nil {
			return fmt.Errorf("cycle: count existing: %w", err)
		}

		start := rollup.DateOf(startDate)
		for i := 0; i < count; i++ {
			end := start.AddDate(0, 0, durationDays-1)
			c, err := Create(tx, CreateOpts{
				Name:      fmt.Sprintf("Cycle %d", existing+int64(i)+1),
				StartDate: start,
				EndDate:   end,
			})
			if err != nil {
				return err
			}
			created = append(created, *c)
			start = end.AddDate(0, 0, 1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update changes a cycle's name and/or window. A window change re-runs
// the overlap check against every other cycle.
func Update(db *gorm.DB, id string, name *string, startDate, endDate *time.Time) (*models.Cycle, error) {
	var updated *models.Cycle
	err := db.Transaction(func(tx *gorm.DB) error {
		c, err := Get(tx, id)
		if err != nil {
			return err
		}
		if name != nil {
			if *name == "" {
				return apperr.Validation("required", "cycle name is required")
			}
			c.Name = *name
		}
		if startDate != nil {
			c.StartDate = rollup.DateOf(*startDate)
		}
		if endDate != nil {
			c.EndDate = rollup.DateOf(*endDate)
		}
		if c.EndDate.Before(c.StartDate) {
			return apperr.Validation("window", "end date before start date")
		}

		if startDate != nil || endDate != nil {
			var overlapping int64
			if err := tx.Model(&models.Cycle{}).
				Where("id <> ? AND start_date <= ? AND end_date >= ?", id, c.EndDate, c.StartDate).
				Count(&overlapping).Error; err != nil {
				return fmt.Errorf("cycle: check overlap: %w", err)
			}
			if overlapping > 0 {
				return apperr.Validation("overlap", "updated window overlaps an existing cycle")
			}
		}

		if err := tx.Save(c).Error; err != nil {
			return fmt.Errorf("cycle: update %s: %w", id, err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a cycle and unschedules its tasks. Tasks survive with
// cycle_id cleared; nothing cascades.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("cycle_id = ?", id).
			Update("cycle_id", nil).Error; err != nil {
			return fmt.Errorf("cycle: unschedule tasks of %s: %w", id, err)
		}
		if err := tx.Delete(&models.Cycle{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("cycle: delete %s: %w", id, err)
		}
		return nil
	})
}
