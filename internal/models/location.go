package models

import "time"

const (
	LocationActive   = "active"
	LocationArchived = "archived"
)

// Location is a place on the farm (field, paddock, barn, pen). Locations
// nest: a farm contains fields, a field contains beds.
type Location struct {
	ID         string  `gorm:"primaryKey;size:32"`
	Name       string  `gorm:"not null"`
	Notes      string  `gorm:"type:text"`
	AreaAcres  float64 `gorm:"default:0"`
	Status     string  `gorm:"size:16;default:active;index"`
	ParentID   *string `gorm:"size:32;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time

	Parent   *Location  `gorm:"foreignKey:ParentID"`
	Children []Location `gorm:"foreignKey:ParentID"`
	Assets   []Asset    `gorm:"foreignKey:CurrentLocationID"`
}

func (l Location) NodeID() string        { return l.ID }
func (l Location) NodeParentID() *string { return l.ParentID }
