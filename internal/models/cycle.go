package models

import "time"

// Cycle is a scheduling window (a week, a sprint). Windows never overlap.
// Dates are stored at midnight UTC; EndDate is inclusive.
type Cycle struct {
	ID        string    `gorm:"primaryKey;size:32"`
	Name      string    `gorm:"not null"`
	StartDate time.Time `gorm:"not null;index"`
	EndDate   time.Time `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
