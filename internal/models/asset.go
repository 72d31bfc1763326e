package models

import "time"

// Asset subtypes. The subtype is an explicit discriminator column;
// subtype-specific behavior dispatches on it via the capability helpers
// below rather than reflection.
const (
	AssetAnimal    = "animal"
	AssetPlant     = "plant"
	AssetLand      = "land"
	AssetEquipment = "equipment"
	AssetStructure = "structure"
	AssetMaterial  = "material"
)

// AssetTypes lists every valid asset subtype.
var AssetTypes = []string{AssetAnimal, AssetPlant, AssetLand, AssetEquipment, AssetStructure, AssetMaterial}

// Asset statuses.
const (
	AssetActive   = "active"
	AssetArchived = "archived"
)

// Asset is a farm resource: an animal, plant, field, machine, structure
// or material. Assets form a self-referential tree (a herd and its
// animals, a field and its beds).
type Asset struct {
	ID                string  `gorm:"primaryKey;size:32"`
	Name              string  `gorm:"not null"`
	AssetType         string  `gorm:"size:16;not null;index"`
	Status            string  `gorm:"size:16;default:active;index"`
	Notes             string  `gorm:"type:text"`
	Quantity          *int
	CurrentLocationID *string `gorm:"size:32;index"`
	ParentID          *string `gorm:"size:32;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ArchivedAt        *time.Time

	Parent          *Asset    `gorm:"foreignKey:ParentID"`
	Children        []Asset   `gorm:"foreignKey:ParentID"`
	CurrentLocation *Location `gorm:"foreignKey:CurrentLocationID"`
}

func (a Asset) NodeID() string        { return a.ID }
func (a Asset) NodeParentID() *string { return a.ParentID }

// ValidAssetType reports whether t is a known asset subtype.
func ValidAssetType(t string) bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Movable reports whether assets of this subtype can be moved between
// locations. Land and structures are fixed in place.
func Movable(assetType string) bool {
	switch assetType {
	case AssetLand, AssetStructure:
		return false
	default:
		return true
	}
}

// Countable reports whether this subtype carries a meaningful quantity
// (herds, flocks, seed lots).
func Countable(assetType string) bool {
	switch assetType {
	case AssetAnimal, AssetPlant, AssetMaterial:
		return true
	default:
		return false
	}
}
