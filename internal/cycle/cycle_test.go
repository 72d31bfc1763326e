package cycle

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Plan{}, &models.Cycle{}, &models.Task{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreate_OverlapRejected(t *testing.T) {
	db := setupDB(t)

	_, err := Create(db, CreateOpts{Name: "January", StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 31)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = Create(db, CreateOpts{Name: "Overlap", StartDate: date(2026, 1, 15), EndDate: date(2026, 2, 15)})
	if !apperr.IsValidation(err) {
		t.Errorf("overlapping Create error = %v, want ValidationError", err)
	}

	var count int64
	if err := db.Model(&models.Cycle{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("cycle rows = %d, want 1 (rejected create must write nothing)", count)
	}
}

func TestCreate_AdjacentWindowsAllowed(t *testing.T) {
	db := setupDB(t)

	if _, err := Create(db, CreateOpts{Name: "Week 1", StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 7)}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := Create(db, CreateOpts{Name: "Week 2", StartDate: date(2026, 1, 8), EndDate: date(2026, 1, 14)}); err != nil {
		t.Errorf("adjacent Create: %v", err)
	}
}

func TestCreate_InvertedWindow(t *testing.T) {
	db := setupDB(t)
	_, err := Create(db, CreateOpts{Name: "Backwards", StartDate: date(2026, 2, 1), EndDate: date(2026, 1, 1)})
	if !apperr.IsValidation(err) {
		t.Errorf("inverted window error = %v, want ValidationError", err)
	}
}

func TestFindCurrent(t *testing.T) {
	db := setupDB(t)
	created, err := Create(db, CreateOpts{Name: "Now", StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 7)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := FindCurrent(db, date(2026, 3, 4))
	if err != nil {
		t.Fatalf("FindCurrent: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("FindCurrent = %s, want %s", got.ID, created.ID)
	}

	// Outside every window: pure read, NotFound, no row created.
	_, err = FindCurrent(db, date(2026, 6, 1))
	if !apperr.IsNotFound(err) {
		t.Errorf("FindCurrent outside windows error = %v, want NotFoundError", err)
	}
	var count int64
	if err := db.Model(&models.Cycle{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("FindCurrent created a row: count = %d, want 1", count)
	}
}

func TestEnsureCurrent(t *testing.T) {
	db := setupDB(t)
	now := date(2026, 5, 10)

	created, err := EnsureCurrent(db, now)
	if err != nil {
		t.Fatalf("EnsureCurrent: %v", err)
	}
	if !created.StartDate.Equal(now) {
		t.Errorf("StartDate = %s, want %s", created.StartDate, now)
	}
	wantEnd := now.AddDate(0, 0, DefaultDurationDays-1)
	if !created.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %s, want %s", created.EndDate, wantEnd)
	}

	// Second call finds the same cycle instead of creating another.
	again, err := EnsureCurrent(db, now.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("EnsureCurrent again: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("EnsureCurrent created a second cycle: %s != %s", again.ID, created.ID)
	}
}

func TestGenerate(t *testing.T) {
	db := setupDB(t)

	cycles, err := Generate(db, date(2026, 1, 5), 4, 7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(cycles) != 4 {
		t.Fatalf("generated %d cycles, want 4", len(cycles))
	}

	// Consecutive, non-overlapping weekly windows.
	for i, c := range cycles {
		wantStart := date(2026, 1, 5).AddDate(0, 0, i*7)
		wantEnd := wantStart.AddDate(0, 0, 6)
		if !c.StartDate.Equal(wantStart) || !c.EndDate.Equal(wantEnd) {
			t.Errorf("cycle %d window = %s..%s, want %s..%s", i, c.StartDate, c.EndDate, wantStart, wantEnd)
		}
	}
}

func TestGenerate_OverlapFailsWholeBatch(t *testing.T) {
	db := setupDB(t)
	if _, err := Create(db, CreateOpts{Name: "Blocker", StartDate: date(2026, 1, 15), EndDate: date(2026, 1, 21)}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := Generate(db, date(2026, 1, 1), 4, 7)
	if !apperr.IsValidation(err) {
		t.Fatalf("Generate error = %v, want ValidationError", err)
	}

	// The first non-overlapping windows must have rolled back too.
	var count int64
	if err := db.Model(&models.Cycle{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("cycle rows = %d, want only the pre-existing 1", count)
	}
}

func TestUpdate_WindowOverlap(t *testing.T) {
	db := setupDB(t)
	if _, err := Create(db, CreateOpts{Name: "A", StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 7)}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := Create(db, CreateOpts{Name: "B", StartDate: date(2026, 1, 8), EndDate: date(2026, 1, 14)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newStart := date(2026, 1, 5)
	_, err = Update(db, b.ID, nil, &newStart, nil)
	if !apperr.IsValidation(err) {
		t.Errorf("overlapping Update error = %v, want ValidationError", err)
	}

	// Name-only update on the same window passes the overlap check.
	name := "B renamed"
	updated, err := Update(db, b.ID, &name, nil, nil)
	if err != nil {
		t.Fatalf("Update name: %v", err)
	}
	if updated.Name != "B renamed" {
		t.Errorf("Name = %q, want %q", updated.Name, "B renamed")
	}
}

func TestDelete_UnschedulesTasks(t *testing.T) {
	db := setupDB(t)
	c, err := Create(db, CreateOpts{Name: "Doomed", StartDate: date(2026, 4, 1), EndDate: date(2026, 4, 7)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	planID, err := models.NewID("plan")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if err := db.Create(&models.Plan{ID: planID, Name: "Plan"}).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	taskID, err := models.NewID("task")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	task := models.Task{ID: taskID, Title: "Weed", State: models.TaskTodo, PlanID: planID, CycleID: &c.ID}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := Delete(db, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var got models.Task
	if err := db.First(&got, "id = ?", taskID).Error; err != nil {
		t.Fatalf("task should survive cycle deletion: %v", err)
	}
	if got.CycleID != nil {
		t.Errorf("task cycle_id = %v, want nil after cycle delete", *got.CycleID)
	}

	if _, err := Get(db, c.ID); !apperr.IsNotFound(err) {
		t.Errorf("Get deleted cycle error = %v, want NotFoundError", err)
	}
}
