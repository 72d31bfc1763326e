package notify

import (
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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
	if err := db.AutoMigrate(&models.Plan{}, &models.Task{}, &models.TaskRelation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNextCronDuration(t *testing.T) {
	if d := nextCronDuration("not a cron"); d != 0 {
		t.Errorf("bad expression duration = %v, want 0", d)
	}
	// Every minute: next fire is within the coming minute.
	d := nextCronDuration("* * * * *")
	if d <= 0 || d > time.Minute {
		t.Errorf("duration = %v, want within a minute", d)
	}
}

func TestBuildOverdueDigest_Empty(t *testing.T) {
	db := setupDB(t)
	event, err := BuildOverdueDigest(db, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if event != nil {
		t.Errorf("want nil event with nothing to report, got %+v", event)
	}
}

func TestBuildOverdueDigest(t *testing.T) {
	db := setupDB(t)
	plan := models.Plan{ID: "plan-00001", Name: "p", Status: models.PlanActive}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	now := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -2)
	estimate := 90
	overdueTask := models.Task{
		ID: "task-00001", Title: "Weed beds", State: models.TaskTodo,
		PlanID: plan.ID, TargetDate: &due, Estimate: &estimate,
	}
	if err := db.Create(&overdueTask).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	event, err := BuildOverdueDigest(db, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if event == nil {
		t.Fatal("want a digest event")
	}
	if event.Severity != "warning" {
		t.Errorf("severity = %q, want warning", event.Severity)
	}
	if !strings.Contains(event.Title, "1 overdue") {
		t.Errorf("title = %q", event.Title)
	}
	if !strings.Contains(event.Body, "Weed beds") || !strings.Contains(event.Body, "1h 30m") {
		t.Errorf("body = %q", event.Body)
	}
}
