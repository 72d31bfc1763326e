package models

import "time"

// Task states. No transition graph is enforced; any state may move to
// any other.
const (
	TaskBacklog    = "backlog"
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
	TaskCancelled  = "cancelled"
)

// TaskStates lists every valid task state.
var TaskStates = []string{TaskBacklog, TaskTodo, TaskInProgress, TaskDone, TaskCancelled}

// Task is a unit of work. Every task belongs to exactly one plan, may be
// scheduled into a cycle, and may nest under a parent task as a subtask.
type Task struct {
	ID          string  `gorm:"primaryKey;size:32"`
	Title       string  `gorm:"not null"`
	Description string  `gorm:"type:text"`
	State       string  `gorm:"size:16;default:backlog;index"`
	Estimate    *int    // minutes
	TargetDate  *time.Time
	PlanID      string  `gorm:"size:32;not null;index"`
	CycleID     *string `gorm:"size:32;index"`
	ParentID    *string `gorm:"size:32;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	Plan     *Plan  `gorm:"foreignKey:PlanID"`
	Cycle    *Cycle `gorm:"foreignKey:CycleID"`
	Parent   *Task  `gorm:"foreignKey:ParentID"`
	Children []Task `gorm:"foreignKey:ParentID"`
}

func (t Task) NodeID() string        { return t.ID }
func (t Task) NodeParentID() *string { return t.ParentID }

// ValidTaskState reports whether s is a known task state.
func ValidTaskState(s string) bool {
	for _, known := range TaskStates {
		if s == known {
			return true
		}
	}
	return false
}

// ActiveState reports whether s counts as active (not done, not cancelled).
func ActiveState(s string) bool {
	return s != TaskDone && s != TaskCancelled
}

// TaskAsset links a task to an asset it mentions.
type TaskAsset struct {
	TaskID  string `gorm:"primaryKey;size:32"`
	AssetID string `gorm:"primaryKey;size:32"`
}

// TaskLocation links a task to a location it mentions.
type TaskLocation struct {
	TaskID     string `gorm:"primaryKey;size:32"`
	LocationID string `gorm:"primaryKey;size:32"`
}

// TaskLog links a task to a log it mentions.
type TaskLog struct {
	TaskID string `gorm:"primaryKey;size:32"`
	LogID  string `gorm:"primaryKey;size:32"`
}

// TaskTag links a task to a tag.
type TaskTag struct {
	TaskID string `gorm:"primaryKey;size:32"`
	TagID  string `gorm:"primaryKey;size:32"`
}
