package asset

import (
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
	err = db.AutoMigrate(&models.Asset{}, &models.Location{}, &models.FarmLog{}, &models.LogAsset{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createLocation(t *testing.T, db *gorm.DB, name string) *models.Location {
	t.Helper()
	id, err := models.NewID("loc")
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	loc := &models.Location{ID: id, Name: name, Status: "active"}
	if err := db.Create(loc).Error; err != nil {
		t.Fatalf("create location: %v", err)
	}
	return loc
}

func intPtr(n int) *int { return &n }

func TestCreate_Validation(t *testing.T) {
	db := setupDB(t)

	cases := []struct {
		name string
		opts CreateOpts
	}{
		{"missing name", CreateOpts{AssetType: models.AssetAnimal}},
		{"bad type", CreateOpts{Name: "x", AssetType: "vehicle"}},
		{"quantity on equipment", CreateOpts{Name: "x", AssetType: models.AssetEquipment, Quantity: intPtr(2)}},
		{"negative quantity", CreateOpts{Name: "x", AssetType: models.AssetAnimal, Quantity: intPtr(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Create(db, tc.opts); !apperr.IsValidation(err) {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}
}

func TestCreate_CountableQuantity(t *testing.T) {
	db := setupDB(t)
	herd, err := Create(db, CreateOpts{Name: "Dairy herd", AssetType: models.AssetAnimal, Quantity: intPtr(24)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if herd.Quantity == nil || *herd.Quantity != 24 {
		t.Error("quantity not stored")
	}
	if herd.Status != models.AssetActive {
		t.Errorf("status = %q, want active", herd.Status)
	}
}

func TestMove(t *testing.T) {
	db := setupDB(t)
	barn := createLocation(t, db, "Barn")
	pasture := createLocation(t, db, "South pasture")
	herd, err := Create(db, CreateOpts{
		Name: "Dairy herd", AssetType: models.AssetAnimal, CurrentLocationID: &barn.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	log, err := Move(db, herd.ID, pasture.ID, "morning rotation")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if log.LogType != models.LogMovement {
		t.Errorf("log type = %q, want movement", log.LogType)
	}
	if log.FromLocationID == nil || *log.FromLocationID != barn.ID {
		t.Error("movement log missing origin")
	}
	if log.ToLocationID == nil || *log.ToLocationID != pasture.ID {
		t.Error("movement log missing destination")
	}

	moved, err := Get(db, herd.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if moved.CurrentLocationID == nil || *moved.CurrentLocationID != pasture.ID {
		t.Error("asset location not updated")
	}

	var linked int64
	db.Model(&models.LogAsset{}).Where("log_id = ? AND asset_id = ?", log.ID, herd.ID).Count(&linked)
	if linked != 1 {
		t.Error("movement log not linked to asset")
	}
}

func TestMove_Rejections(t *testing.T) {
	db := setupDB(t)
	field := createLocation(t, db, "Field")

	land, err := Create(db, CreateOpts{Name: "Back forty", AssetType: models.AssetLand})
	if err != nil {
		t.Fatalf("create land: %v", err)
	}
	if _, err := Move(db, land.ID, field.ID, ""); !apperr.IsValidation(err) {
		t.Errorf("moving land: want validation error, got %v", err)
	}

	herd, err := Create(db, CreateOpts{
		Name: "Herd", AssetType: models.AssetAnimal, CurrentLocationID: &field.ID,
	})
	if err != nil {
		t.Fatalf("create herd: %v", err)
	}
	if _, err := Move(db, herd.ID, field.ID, ""); !apperr.IsValidation(err) {
		t.Errorf("moving to current location: want validation error, got %v", err)
	}
	if _, err := Move(db, herd.ID, "loc-zzzzz", ""); !apperr.IsNotFound(err) {
		t.Errorf("unknown destination: want not found, got %v", err)
	}

	if _, err := Archive(db, herd.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	barn := createLocation(t, db, "Barn")
	if _, err := Move(db, herd.ID, barn.ID, ""); !apperr.IsValidation(err) {
		t.Errorf("moving archived asset: want validation error, got %v", err)
	}

	// Failed moves write no logs.
	var logs int64
	db.Model(&models.FarmLog{}).Count(&logs)
	if logs != 0 {
		t.Errorf("rejected moves left %d logs", logs)
	}
}

func TestArchive_Lifecycle(t *testing.T) {
	db := setupDB(t)
	tractor, err := Create(db, CreateOpts{Name: "Tractor", AssetType: models.AssetEquipment})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	archived, err := Archive(db, tractor.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != models.AssetArchived || archived.ArchivedAt == nil {
		t.Error("archive did not set status and timestamp")
	}

	// Idempotent.
	again, err := Archive(db, tractor.ID)
	if err != nil {
		t.Fatalf("second archive: %v", err)
	}
	if !again.ArchivedAt.Equal(*archived.ArchivedAt) {
		t.Error("second archive changed the timestamp")
	}

	listed, err := List(db, ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Error("archived asset shows in default listing")
	}
	listed, err = List(db, ListFilters{IncludeArchived: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Error("archived asset missing from inclusive listing")
	}

	restored, err := Unarchive(db, tractor.ID)
	if err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if restored.Status != models.AssetActive || restored.ArchivedAt != nil {
		t.Error("unarchive did not restore the asset")
	}
}

func TestList_Filters(t *testing.T) {
	db := setupDB(t)
	field := createLocation(t, db, "Field")
	herd, err := Create(db, CreateOpts{
		Name: "Herd", AssetType: models.AssetAnimal, CurrentLocationID: &field.ID,
	})
	if err != nil {
		t.Fatalf("create herd: %v", err)
	}
	calf, err := Create(db, CreateOpts{
		Name: "Calf", AssetType: models.AssetAnimal, ParentID: &herd.ID,
	})
	if err != nil {
		t.Fatalf("create calf: %v", err)
	}
	if _, err := Create(db, CreateOpts{Name: "Baler", AssetType: models.AssetEquipment}); err != nil {
		t.Fatalf("create baler: %v", err)
	}

	animals, err := List(db, ListFilters{AssetType: models.AssetAnimal})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(animals) != 2 {
		t.Errorf("animal filter returned %d assets, want 2", len(animals))
	}

	atField, err := List(db, ListFilters{LocationID: field.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(atField) != 1 || atField[0].ID != herd.ID {
		t.Errorf("location filter returned %d assets", len(atField))
	}

	children, err := List(db, ListFilters{ParentID: herd.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(children) != 1 || children[0].ID != calf.ID {
		t.Errorf("parent filter returned %d assets", len(children))
	}
}
