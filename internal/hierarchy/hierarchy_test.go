package hierarchy

import (
	"errors"
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
	if err := db.AutoMigrate(&models.Location{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createLocation(t *testing.T, db *gorm.DB, name string, parentID *string) string {
	t.Helper()
	id, err := models.NewID("loc")
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	loc := models.Location{ID: id, Name: name, ParentID: parentID}
	if err := db.Create(&loc).Error; err != nil {
		t.Fatalf("create location %q: %v", name, err)
	}
	return id
}

func TestBasicTree(t *testing.T) {
	db := setupDB(t)
	root := createLocation(t, db, "Farm", nil)
	child := createLocation(t, db, "North Field", &root)
	grandchild := createLocation(t, db, "Bed 1", &child)

	depths := []struct {
		id   string
		want int
	}{
		{root, 0},
		{child, 1},
		{grandchild, 2},
	}
	for _, tt := range depths {
		got, err := Depth[models.Location](db, "location", tt.id)
		if err != nil {
			t.Fatalf("Depth(%s): %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("Depth(%s) = %d, want %d", tt.id, got, tt.want)
		}
	}

	isRoot, err := IsRoot[models.Location](db, "location", root)
	if err != nil || !isRoot {
		t.Errorf("IsRoot(root) = %v, %v; want true", isRoot, err)
	}
	isLeaf, err := IsLeaf[models.Location](db, "location", grandchild)
	if err != nil || !isLeaf {
		t.Errorf("IsLeaf(grandchild) = %v, %v; want true", isLeaf, err)
	}
	count, err := ChildCount[models.Location](db, "location", root)
	if err != nil {
		t.Fatalf("ChildCount: %v", err)
	}
	if count != 1 {
		t.Errorf("ChildCount(root) = %d, want 1", count)
	}

	chain, err := Ancestors[models.Location](db, "location", grandchild)
	if err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("Ancestors(grandchild) length = %d, want 2", len(chain))
	}
	// Nearest-first: immediate parent, then root.
	if chain[0].ID != child || chain[1].ID != root {
		t.Errorf("Ancestors order = [%s, %s], want [%s, %s]", chain[0].ID, chain[1].ID, child, root)
	}
}

func TestAncestors_EmptyForRoot(t *testing.T) {
	db := setupDB(t)
	root := createLocation(t, db, "Farm", nil)

	chain, err := Ancestors[models.Location](db, "location", root)
	if err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	if len(chain) != 0 {
		t.Errorf("Ancestors(root) length = %d, want 0", len(chain))
	}
}

func TestSetParent_CycleRejected(t *testing.T) {
	db := setupDB(t)
	root := createLocation(t, db, "Farm", nil)
	child := createLocation(t, db, "North Field", &root)

	err := SetParent[models.Location](db, "location", root, &child)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	if !apperr.IsCycle(err) {
		t.Errorf("error = %v, want CycleError", err)
	}

	// Root's parent must be unchanged.
	node, err := Get[models.Location](db, "location", root)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if node.ParentID != nil {
		t.Errorf("root parent = %v, want nil after rejected move", *node.ParentID)
	}
}

func TestSetParent_DeepCycleRejected(t *testing.T) {
	db := setupDB(t)
	root := createLocation(t, db, "Farm", nil)
	child := createLocation(t, db, "Field", &root)
	grandchild := createLocation(t, db, "Bed", &child)

	err := SetParent[models.Location](db, "location", root, &grandchild)
	if !apperr.IsCycle(err) {
		t.Errorf("error = %v, want CycleError for grandchild parent", err)
	}
}

func TestSetParent_SelfRejected(t *testing.T) {
	db := setupDB(t)
	root := createLocation(t, db, "Farm", nil)

	err := SetParent[models.Location](db, "location", root, &root)
	if !apperr.IsCycle(err) {
		t.Errorf("error = %v, want CycleError for self-parent", err)
	}
}

func TestSetParent_MissingParent(t *testing.T) {
	db := setupDB(t)
	root := createLocation(t, db, "Farm", nil)
	missing := "loc-zzzzz"

	err := SetParent[models.Location](db, "location", root, &missing)
	if !apperr.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}

func TestSetParent_MoveSubtree(t *testing.T) {
	db := setupDB(t)
	farm := createLocation(t, db, "Farm", nil)
	fieldA := createLocation(t, db, "Field A", &farm)
	fieldB := createLocation(t, db, "Field B", &farm)
	bed := createLocation(t, db, "Bed", &fieldA)

	if err := SetParent[models.Location](db, "location", fieldA, &fieldB); err != nil {
		t.Fatalf("SetParent: %v", err)
	}

	// Depth of the moved node and its subtree must reflect the new chain.
	wantDepths := map[string]int{fieldA: 2, bed: 3, fieldB: 1, farm: 0}
	for id, want := range wantDepths {
		got, err := Depth[models.Location](db, "location", id)
		if err != nil {
			t.Fatalf("Depth(%s): %v", id, err)
		}
		if got != want {
			t.Errorf("Depth(%s) = %d, want %d", id, got, want)
		}
	}
}

func TestSetParent_ClearToRoot(t *testing.T) {
	db := setupDB(t)
	farm := createLocation(t, db, "Farm", nil)
	field := createLocation(t, db, "Field", &farm)

	if err := SetParent[models.Location](db, "location", field, nil); err != nil {
		t.Fatalf("SetParent(nil): %v", err)
	}
	isRoot, err := IsRoot[models.Location](db, "location", field)
	if err != nil || !isRoot {
		t.Errorf("IsRoot after clear = %v, %v; want true", isRoot, err)
	}
}

func TestDepthConsistency(t *testing.T) {
	db := setupDB(t)
	farm := createLocation(t, db, "Farm", nil)
	a := createLocation(t, db, "A", &farm)
	b := createLocation(t, db, "B", &a)
	c := createLocation(t, db, "C", &b)

	for _, id := range []string{farm, a, b, c} {
		node, err := Get[models.Location](db, "location", id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		depth, err := Depth[models.Location](db, "location", id)
		if err != nil {
			t.Fatalf("Depth(%s): %v", id, err)
		}
		if node.ParentID == nil {
			if depth != 0 {
				t.Errorf("root %s depth = %d, want 0", id, depth)
			}
			continue
		}
		parentDepth, err := Depth[models.Location](db, "location", *node.ParentID)
		if err != nil {
			t.Fatalf("Depth(parent of %s): %v", id, err)
		}
		if depth != parentDepth+1 {
			t.Errorf("depth(%s) = %d, want parent depth %d + 1", id, depth, parentDepth)
		}
	}
}

func TestDescendants(t *testing.T) {
	db := setupDB(t)
	farm := createLocation(t, db, "Farm", nil)
	a := createLocation(t, db, "A", &farm)
	b := createLocation(t, db, "B", &farm)
	c := createLocation(t, db, "C", &a)
	other := createLocation(t, db, "Other Farm", nil)

	got, err := Descendants[models.Location](db, "location", farm)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	ids := make(map[string]bool)
	for _, n := range got {
		ids[n.ID] = true
	}
	for _, want := range []string{a, b, c} {
		if !ids[want] {
			t.Errorf("Descendants missing %s", want)
		}
	}
	if ids[other] || ids[farm] {
		t.Error("Descendants should exclude unrelated nodes and the node itself")
	}

	leaves, err := Descendants[models.Location](db, "location", c)
	if err != nil {
		t.Fatalf("Descendants(leaf): %v", err)
	}
	if len(leaves) != 0 {
		t.Errorf("Descendants(leaf) = %d nodes, want 0", len(leaves))
	}
}

func TestRoot(t *testing.T) {
	db := setupDB(t)
	farm := createLocation(t, db, "Farm", nil)
	field := createLocation(t, db, "Field", &farm)
	bed := createLocation(t, db, "Bed", &field)

	top, err := Root[models.Location](db, "location", bed)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if top.ID != farm {
		t.Errorf("Root(bed) = %s, want %s", top.ID, farm)
	}

	self, err := Root[models.Location](db, "location", farm)
	if err != nil {
		t.Fatalf("Root(root): %v", err)
	}
	if self.ID != farm {
		t.Errorf("Root(root) = %s, want itself", self.ID)
	}
}

func TestOrphanSurvival(t *testing.T) {
	db := setupDB(t)
	farm := createLocation(t, db, "Farm", nil)
	field := createLocation(t, db, "Field", &farm)
	bed := createLocation(t, db, "Bed", &field)

	// Hard delete the middle node, leaving bed's parent_id dangling.
	if err := db.Delete(&models.Location{}, "id = ?", field).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}

	state, err := StateOf[models.Location](db, "location", bed)
	if err != nil {
		t.Fatalf("StateOf: %v", err)
	}
	if state != ParentDangling {
		t.Errorf("StateOf(orphan) = %s, want dangling", state)
	}

	// Orphan is not root (it still has a parent_id) but reads must not fail.
	isRoot, err := IsRoot[models.Location](db, "location", bed)
	if err != nil {
		t.Fatalf("IsRoot(orphan): %v", err)
	}
	if isRoot {
		t.Error("orphan should not report as root")
	}

	chain, err := Ancestors[models.Location](db, "location", bed)
	if err != nil {
		t.Fatalf("Ancestors(orphan): %v", err)
	}
	if len(chain) != 0 {
		t.Errorf("Ancestors(orphan) length = %d, want 0 (dangling boundary)", len(chain))
	}

	depth, err := Depth[models.Location](db, "location", bed)
	if err != nil {
		t.Fatalf("Depth(orphan): %v", err)
	}
	if depth != 0 {
		t.Errorf("Depth(orphan) = %d, want 0", depth)
	}

	count, err := ChildCount[models.Location](db, "location", bed)
	if err != nil {
		t.Fatalf("ChildCount(orphan): %v", err)
	}
	if count != 0 {
		t.Errorf("ChildCount(orphan) = %d, want 0", count)
	}
}

func TestStrayCycle_Terminates(t *testing.T) {
	db := setupDB(t)
	a := createLocation(t, db, "A", nil)
	b := createLocation(t, db, "B", &a)

	// Corrupt the table out-of-band: A's parent becomes B, forming A↔B.
	if err := db.Model(&models.Location{}).Where("id = ?", a).Update("parent_id", b).Error; err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	// Walks must terminate, not loop forever.
	chain, err := Ancestors[models.Location](db, "location", a)
	if err != nil {
		t.Fatalf("Ancestors on corrupted graph: %v", err)
	}
	if len(chain) > 2 {
		t.Errorf("Ancestors on 2-cycle returned %d nodes", len(chain))
	}

	if _, err := Depth[models.Location](db, "location", b); err != nil {
		t.Fatalf("Depth on corrupted graph: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := setupDB(t)

	_, err := Get[models.Location](db, "location", "loc-nope0")
	if !apperr.IsNotFound(err) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		if nf.Kind != "location" {
			t.Errorf("NotFoundError.Kind = %q, want location", nf.Kind)
		}
	}
}
