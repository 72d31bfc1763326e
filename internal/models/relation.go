package models

import "time"

// Task relation types. "blocks" is directional: source blocks target.
// "related" and "duplicate" are symmetric; only one ordering of a pair
// may exist at a time.
const (
	RelationBlocks    = "blocks"
	RelationRelated   = "related"
	RelationDuplicate = "duplicate"
)

// RelationTypes lists every valid relation type.
var RelationTypes = []string{RelationBlocks, RelationRelated, RelationDuplicate}

// TaskRelation is a typed edge between two tasks. The triple
// (source, target, type) is unique.
type TaskRelation struct {
	ID           string `gorm:"primaryKey;size:32"`
	SourceTaskID string `gorm:"size:32;not null;index;uniqueIndex:idx_relation_edge"`
	TargetTaskID string `gorm:"size:32;not null;index;uniqueIndex:idx_relation_edge"`
	RelationType string `gorm:"size:16;not null;uniqueIndex:idx_relation_edge"`
	CreatedAt    time.Time

	SourceTask Task `gorm:"foreignKey:SourceTaskID"`
	TargetTask Task `gorm:"foreignKey:TargetTaskID"`
}

// ValidRelationType reports whether t is a known relation type.
func ValidRelationType(t string) bool {
	for _, known := range RelationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SymmetricRelation reports whether t has no direction, meaning the
// reverse pair is the same logical edge.
func SymmetricRelation(t string) bool {
	return t == RelationRelated || t == RelationDuplicate
}
