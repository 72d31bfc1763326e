package refindex

import (
	"fmt"
	"testing"

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
	err = db.AutoMigrate(
		&models.Asset{}, &models.Location{}, &models.FarmLog{},
		&models.Plan{}, &models.Cycle{}, &models.Task{},
		&models.TaskAsset{}, &models.TaskLocation{}, &models.TaskLog{},
		&models.PlanAsset{}, &models.PlanLocation{}, &models.PlanLog{},
		&models.PlanTaskRef{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createPlan(t *testing.T, db *gorm.DB, name string) string {
	t.Helper()
	id, err := models.NewID("plan")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if err := db.Create(&models.Plan{ID: id, Name: name, Status: models.PlanPlanned}).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return id
}

func createTask(t *testing.T, db *gorm.DB, title, planID string) string {
	t.Helper()
	id, err := models.NewID("task")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if err := db.Create(&models.Task{ID: id, Title: title, State: models.TaskTodo, PlanID: planID}).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	return id
}

func createAsset(t *testing.T, db *gorm.DB, name string) string {
	t.Helper()
	id, err := models.NewID("asset")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if err := db.Create(&models.Asset{ID: id, Name: name, AssetType: models.AssetAnimal, Status: models.AssetActive}).Error; err != nil {
		t.Fatalf("create asset: %v", err)
	}
	return id
}

func TestForAsset_CountVsCap(t *testing.T) {
	db := setupDB(t)
	plan := createPlan(t, db, "Herd plan")
	asset := createAsset(t, db, "Dairy herd")

	// 25 tasks mention the asset; the list caps at 20, the count does not.
	for i := 0; i < 25; i++ {
		task := createTask(t, db, fmt.Sprintf("Check cow %d", i), plan)
		if err := db.Create(&models.TaskAsset{TaskID: task, AssetID: asset}).Error; err != nil {
			t.Fatalf("link task %d: %v", i, err)
		}
	}

	refs, err := ForAsset(db, asset)
	if err != nil {
		t.Fatalf("ForAsset: %v", err)
	}
	if refs.TaskCount != 25 {
		t.Errorf("TaskCount = %d, want 25", refs.TaskCount)
	}
	if len(refs.Tasks) != DisplayLimit {
		t.Errorf("len(Tasks) = %d, want %d (display cap)", len(refs.Tasks), DisplayLimit)
	}
	if refs.PlanCount != 0 {
		t.Errorf("PlanCount = %d, want 0", refs.PlanCount)
	}
}

func TestForAsset_Plans(t *testing.T) {
	db := setupDB(t)
	asset := createAsset(t, db, "Orchard")
	planA := createPlan(t, db, "Pruning")
	planB := createPlan(t, db, "Harvest")

	for _, planID := range []string{planA, planB} {
		if err := db.Create(&models.PlanAsset{PlanID: planID, AssetID: asset}).Error; err != nil {
			t.Fatalf("link plan: %v", err)
		}
	}

	refs, err := ForAsset(db, asset)
	if err != nil {
		t.Fatalf("ForAsset: %v", err)
	}
	if refs.PlanCount != 2 {
		t.Errorf("PlanCount = %d, want 2", refs.PlanCount)
	}
	if len(refs.Plans) != 2 {
		t.Errorf("len(Plans) = %d, want 2", len(refs.Plans))
	}
}

func TestForAsset_NotFound(t *testing.T) {
	db := setupDB(t)
	_, err := ForAsset(db, "asset-zzzzz")
	if !apperr.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}

func TestForLocation(t *testing.T) {
	db := setupDB(t)
	plan := createPlan(t, db, "Field work")
	task := createTask(t, db, "Mow", plan)

	locID, err := models.NewID("loc")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if err := db.Create(&models.Location{ID: locID, Name: "South Field"}).Error; err != nil {
		t.Fatalf("create location: %v", err)
	}
	if err := db.Create(&models.TaskLocation{TaskID: task, LocationID: locID}).Error; err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := db.Create(&models.PlanLocation{PlanID: plan, LocationID: locID}).Error; err != nil {
		t.Fatalf("link: %v", err)
	}

	refs, err := ForLocation(db, locID)
	if err != nil {
		t.Fatalf("ForLocation: %v", err)
	}
	if refs.TaskCount != 1 || len(refs.Tasks) != 1 {
		t.Errorf("tasks = %d (count %d), want 1", len(refs.Tasks), refs.TaskCount)
	}
	if refs.PlanCount != 1 || len(refs.Plans) != 1 {
		t.Errorf("plans = %d (count %d), want 1", len(refs.Plans), refs.PlanCount)
	}
}

func TestForLog(t *testing.T) {
	db := setupDB(t)
	plan := createPlan(t, db, "Winter prep")
	task := createTask(t, db, "Insulate pipes", plan)

	logID, err := models.NewID("log")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if err := db.Create(&models.FarmLog{ID: logID, Name: "Frost observed", LogType: models.LogObservation, Status: models.LogDone}).Error; err != nil {
		t.Fatalf("create log: %v", err)
	}
	if err := db.Create(&models.TaskLog{TaskID: task, LogID: logID}).Error; err != nil {
		t.Fatalf("link: %v", err)
	}

	refs, err := ForLog(db, logID)
	if err != nil {
		t.Fatalf("ForLog: %v", err)
	}
	if refs.TaskCount != 1 {
		t.Errorf("TaskCount = %d, want 1", refs.TaskCount)
	}
}

func TestForPlan_Forward(t *testing.T) {
	db := setupDB(t)
	plan := createPlan(t, db, "Spring plan")
	otherPlan := createPlan(t, db, "Autumn plan")
	child := createPlan(t, db, "Spring seeding")
	if err := db.Model(&models.Plan{}).Where("id = ?", child).Update("parent_id", plan).Error; err != nil {
		t.Fatalf("reparent: %v", err)
	}

	asset := createAsset(t, db, "Greenhouse")
	if err := db.Create(&models.PlanAsset{PlanID: plan, AssetID: asset}).Error; err != nil {
		t.Fatalf("link asset: %v", err)
	}

	// Cross-link a task owned by another plan.
	foreignTask := createTask(t, db, "Order seed", otherPlan)
	if err := db.Create(&models.PlanTaskRef{PlanID: plan, TaskID: foreignTask}).Error; err != nil {
		t.Fatalf("link task ref: %v", err)
	}

	refs, err := ForPlan(db, plan)
	if err != nil {
		t.Fatalf("ForPlan: %v", err)
	}
	if refs.AssetCount != 1 || len(refs.Assets) != 1 {
		t.Errorf("assets = %d (count %d), want 1", len(refs.Assets), refs.AssetCount)
	}
	if refs.TaskCount != 1 || len(refs.Tasks) != 1 {
		t.Errorf("task refs = %d (count %d), want 1", len(refs.Tasks), refs.TaskCount)
	}
	if refs.Tasks[0].ID != foreignTask {
		t.Errorf("task ref = %s, want %s", refs.Tasks[0].ID, foreignTask)
	}
	if refs.PlanCount != 1 || len(refs.Plans) != 1 {
		t.Errorf("child plans = %d (count %d), want 1", len(refs.Plans), refs.PlanCount)
	}
	if refs.LocationCount != 0 || refs.LogCount != 0 {
		t.Errorf("unexpected location/log refs: %d, %d", refs.LocationCount, refs.LogCount)
	}
}
