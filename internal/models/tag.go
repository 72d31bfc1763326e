package models

import "time"

// Tag is a flat label applied to tasks. Names are unique
// case-insensitively; they are normalized to lowercase on create.
type Tag struct {
	ID        string `gorm:"primaryKey;size:32"`
	Name      string `gorm:"uniqueIndex;not null;size:64"`
	CreatedAt time.Time
}
