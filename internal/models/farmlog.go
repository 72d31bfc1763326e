package models

import "time"

// Log types.
const (
	LogActivity    = "activity"
	LogHarvest     = "harvest"
	LogObservation = "observation"
	LogInput       = "input"
	LogMaintenance = "maintenance"
	LogMovement    = "movement"
)

// LogTypes lists every valid log type.
var LogTypes = []string{LogActivity, LogHarvest, LogObservation, LogInput, LogMaintenance, LogMovement}

// Log statuses.
const (
	LogPending = "pending"
	LogDone    = "done"
)

// FarmLog records something that happened (or should happen) on the farm:
// an activity, a harvest, an observation, a movement between locations.
type FarmLog struct {
	ID             string  `gorm:"primaryKey;size:32"`
	Name           string  `gorm:"not null"`
	LogType        string  `gorm:"size:16;not null;index"`
	Status         string  `gorm:"size:16;default:pending;index"`
	Notes          string  `gorm:"type:text"`
	Timestamp      time.Time
	FromLocationID *string `gorm:"size:32"`
	ToLocationID   *string `gorm:"size:32"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	FromLocation *Location `gorm:"foreignKey:FromLocationID"`
	ToLocation   *Location `gorm:"foreignKey:ToLocationID"`
}

// ValidLogType reports whether t is a known log type.
func ValidLogType(t string) bool {
	for _, known := range LogTypes {
		if t == known {
			return true
		}
	}
	return false
}

// LogAsset links a log to an asset it concerns.
type LogAsset struct {
	LogID   string `gorm:"primaryKey;size:32"`
	AssetID string `gorm:"primaryKey;size:32"`

	Log   FarmLog `gorm:"foreignKey:LogID"`
	Asset Asset   `gorm:"foreignKey:AssetID"`
}
