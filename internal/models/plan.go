package models

import "time"

// Plan statuses.
const (
	PlanPlanned   = "planned"
	PlanActive    = "active"
	PlanCompleted = "completed"
	PlanCancelled = "cancelled"
)

// PlanStatuses lists every valid plan status.
var PlanStatuses = []string{PlanPlanned, PlanActive, PlanCompleted, PlanCancelled}

// Plan is a body of intended work: a season plan, a project, an
// initiative. Plans nest, own tasks via Task.PlanID, and mention other
// entities through the join tables below.
type Plan struct {
	ID          string  `gorm:"primaryKey;size:32"`
	Name        string  `gorm:"not null"`
	Description string  `gorm:"type:text"`
	Status      string  `gorm:"size:16;default:planned;index"`
	StartDate   *time.Time
	TargetDate  *time.Time
	ParentID    *string `gorm:"size:32;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Parent   *Plan  `gorm:"foreignKey:ParentID"`
	Children []Plan `gorm:"foreignKey:ParentID"`
	Tasks    []Task `gorm:"foreignKey:PlanID"`
}

func (p Plan) NodeID() string        { return p.ID }
func (p Plan) NodeParentID() *string { return p.ParentID }

// ValidPlanStatus reports whether s is a known plan status.
func ValidPlanStatus(s string) bool {
	for _, known := range PlanStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PlanAsset links a plan to an asset mentioned in its scope.
type PlanAsset struct {
	PlanID  string `gorm:"primaryKey;size:32"`
	AssetID string `gorm:"primaryKey;size:32"`
}

// PlanLocation links a plan to a location mentioned in its scope.
type PlanLocation struct {
	PlanID     string `gorm:"primaryKey;size:32"`
	LocationID string `gorm:"primaryKey;size:32"`
}

// PlanLog links a plan to a log mentioned in its scope.
type PlanLog struct {
	PlanID string `gorm:"primaryKey;size:32"`
	LogID  string `gorm:"primaryKey;size:32"`
}

// PlanTaskRef cross-links a plan to a task owned by a different plan.
// Distinct from the ownership foreign key Task.PlanID.
type PlanTaskRef struct {
	PlanID string `gorm:"primaryKey;size:32"`
	TaskID string `gorm:"primaryKey;size:32"`
}
