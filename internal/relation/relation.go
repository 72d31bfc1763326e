// Package relation manages typed task-to-task edges: blocks, related,
// duplicate.
package relation

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/models"
)

// Add creates an edge from sourceID to targetID. It rejects
// self-relations, exact duplicates, and — for the symmetric types
// related/duplicate — an existing reverse edge of the same type. Both
// orderings of a blocks pair may coexist. The checks and the insert run
// in one transaction so a rejected add writes nothing.
func Add(db *gorm.DB, sourceID, targetID, relationType string) (*models.TaskRelation, error) {
	if !models.ValidRelationType(relationType) {
		return nil, apperr.Validation("relation_type", "unknown relation type %q", relationType)
	}
	if sourceID == targetID {
		return nil, apperr.Validation("self_referential", "task %s cannot relate to itself", sourceID)
	}

	var rel *models.TaskRelation
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, id := range []string{sourceID, targetID} {
			var count int64
			if err := tx.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return fmt.Errorf("relation: check task %s: %w", id, err)
			}
			if count == 0 {
				return apperr.NotFound("task", id)
			}
		}

		var existing int64
		if err := tx.Model(&models.TaskRelation{}).
			Where("source_task_id = ? AND target_task_id = ? AND relation_type = ?", sourceID, targetID, relationType).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("relation: check duplicate: %w", err)
		}
		if existing > 0 {
			return apperr.Validation("duplicate", "relation %s → %s (%s) already exists", sourceID, targetID, relationType)
		}

		if models.SymmetricRelation(relationType) {
			var inverse int64
			if err := tx.Model(&models.TaskRelation{}).
				Where("source_task_id = ? AND target_task_id = ? AND relation_type = ?", targetID, sourceID, relationType).
				Count(&inverse).Error; err != nil {
				return fmt.Errorf("relation: check inverse: %w", err)
			}
			if inverse > 0 {
				return apperr.Validation("inverse_exists", "relation %s → %s (%s) already exists in the other direction", targetID, sourceID, relationType)
			}
		}

		id, err := models.UniqueID(tx, "rel", &models.TaskRelation{})
		if err != nil {
			return err
		}
		rel = &models.TaskRelation{
			ID:           id,
			SourceTaskID: sourceID,
			TargetTaskID: targetID,
			RelationType: relationType,
		}
		if err := tx.Create(rel).Error; err != nil {
			return fmt.Errorf("relation: create %s → %s: %w", sourceID, targetID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// Remove deletes an edge by id. No cascading effects.
func Remove(db *gorm.DB, id string) error {
	result := db.Delete(&models.TaskRelation{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("relation: remove %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("task_relation", id)
	}
	return nil
}

// Find returns an edge by id.
func Find(db *gorm.DB, id string) (*models.TaskRelation, error) {
	var rel models.TaskRelation
	if err := db.Where("id = ?", id).First(&rel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("task_relation", id)
		}
		return nil, fmt.Errorf("relation: find %s: %w", id, err)
	}
	return &rel, nil
}

// ForTask returns every edge where taskID is source or target.
func ForTask(db *gorm.DB, taskID string) ([]models.TaskRelation, error) {
	var rels []models.TaskRelation
	if err := db.Where("source_task_id = ? OR target_task_id = ?", taskID, taskID).
		Order("created_at ASC").Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("relation: for task %s: %w", taskID, err)
	}
	return rels, nil
}

// BlockersOf returns the blocks edges pointing at taskID; their source
// tasks are the blockers.
func BlockersOf(db *gorm.DB, taskID string) ([]models.TaskRelation, error) {
	var rels []models.TaskRelation
	if err := db.Where("target_task_id = ? AND relation_type = ?", taskID, models.RelationBlocks).
		Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("relation: blockers of %s: %w", taskID, err)
	}
	return rels, nil
}

// Blocking returns the blocks edges originating at taskID; their target
// tasks are the ones taskID blocks.
func Blocking(db *gorm.DB, taskID string) ([]models.TaskRelation, error) {
	var rels []models.TaskRelation
	if err := db.Where("source_task_id = ? AND relation_type = ?", taskID, models.RelationBlocks).
		Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("relation: blocking by %s: %w", taskID, err)
	}
	return rels, nil
}

// BlockedByCount counts blocks edges pointing at taskID.
func BlockedByCount(db *gorm.DB, taskID string) (int64, error) {
	var count int64
	if err := db.Model(&models.TaskRelation{}).
		Where("target_task_id = ? AND relation_type = ?", taskID, models.RelationBlocks).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("relation: blocked-by count of %s: %w", taskID, err)
	}
	return count, nil
}

// BlocksCount counts blocks edges originating at taskID.
func BlocksCount(db *gorm.DB, taskID string) (int64, error) {
	var count int64
	if err := db.Model(&models.TaskRelation{}).
		Where("source_task_id = ? AND relation_type = ?", taskID, models.RelationBlocks).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("relation: blocks count of %s: %w", taskID, err)
	}
	return count, nil
}

// IsBlocked reports whether taskID has at least one blocker whose task
// is still active (not done, not cancelled).
func IsBlocked(db *gorm.DB, taskID string) (bool, error) {
	var count int64
	if err := db.Model(&models.TaskRelation{}).
		Joins("JOIN tasks blocker ON task_relations.source_task_id = blocker.id").
		Where("task_relations.target_task_id = ? AND task_relations.relation_type = ?", taskID, models.RelationBlocks).
		Where("blocker.state NOT IN ?", []string{models.TaskDone, models.TaskCancelled}).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("relation: is blocked %s: %w", taskID, err)
	}
	return count > 0, nil
}
