package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"gorm.io/gorm"
)

// NewID creates an entity ID in prefix-xxxxx format (5-char hex),
// e.g. "asset-a3f01" or "task-09bc2".
func NewID(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("models: generate ID: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b)[:5], nil
}

// UniqueID generates an ID and retries once on collision. The 5-char hex
// space is small enough to collide at realistic row counts, so every
// create path checks the table before inserting.
func UniqueID(db *gorm.DB, prefix string, model interface{}) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		id, err := NewID(prefix)
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("models: check ID uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("models: failed to generate unique %s ID after retries", prefix)
}
