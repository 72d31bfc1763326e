package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hollowoak/farmhand/internal/db"
	"github.com/hollowoak/farmhand/internal/models"
)

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "farmhand dev") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "migrate", "db", "summary", "cycle", "version"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestPrintSummary(t *testing.T) {
	conn := setupDB(t)
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	plan := models.Plan{ID: "plan-00001", Name: "p", Status: models.PlanActive}
	if err := conn.Create(&plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	cyc := models.Cycle{
		ID: "cycle-00001", Name: "Week 27",
		StartDate: time.Date(2026, 6, 29, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := conn.Create(&cyc).Error; err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	done := models.Task{ID: "task-00001", Title: "t1", State: models.TaskDone, PlanID: plan.ID, CycleID: &cyc.ID}
	open := models.Task{ID: "task-00002", Title: "t2", State: models.TaskTodo, PlanID: plan.ID, CycleID: &cyc.ID}
	if err := conn.Create(&done).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := conn.Create(&open).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	pasture := models.Location{ID: "loc-00001", Name: "North pasture", Status: models.LocationActive}
	if err := conn.Create(&pasture).Error; err != nil {
		t.Fatalf("create location: %v", err)
	}
	herd := models.Asset{
		ID: "asset-00001", Name: "Herd", AssetType: models.AssetAnimal,
		Status: models.AssetActive, CurrentLocationID: &pasture.ID,
	}
	if err := conn.Create(&herd).Error; err != nil {
		t.Fatalf("create asset: %v", err)
	}

	var out bytes.Buffer
	if err := printSummary(&out, conn, now); err != nil {
		t.Fatalf("summary: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Tasks      2") {
		t.Errorf("missing task count in %q", text)
	}
	if !strings.Contains(text, "animal     1") {
		t.Errorf("missing asset type count in %q", text)
	}
	if !strings.Contains(text, "North pasture: 1 assets") {
		t.Errorf("missing location rollup in %q", text)
	}
	if !strings.Contains(text, `Cycle "Week 27": day 3 of 7, 1/2 tasks done (50%)`) {
		t.Errorf("missing cycle line in %q", text)
	}
}

func TestPrintSummary_NoCycle(t *testing.T) {
	conn := setupDB(t)
	var out bytes.Buffer
	if err := printSummary(&out, conn, time.Now()); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out.String(), "No cycle underway") {
		t.Errorf("output = %q", out.String())
	}
}
