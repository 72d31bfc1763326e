package task

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/models"
)

// EnsureTag returns the tag with the given name, creating it if needed.
// Names are case-insensitive and stored lowercase.
func EnsureTag(db *gorm.DB, name string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, apperr.Validation("required", "tag name is required")
	}
	var tag models.Tag
	err := db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("task: lookup tag %q: %w", name, err)
	}
	id, err := models.UniqueID(db, "tag", &models.Tag{})
	if err != nil {
		return nil, err
	}
	tag = models.Tag{ID: id, Name: name}
	if err := db.Create(&tag).Error; err != nil {
		return nil, fmt.Errorf("task: create tag %q: %w", name, err)
	}
	return &tag, nil
}

// TagTask applies a tag (by name) to a task, creating the tag if it
// does not exist. Tagging twice is a no-op.
func TagTask(db *gorm.DB, taskID, name string) (*models.Tag, error) {
	var tag *models.Tag
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, taskID); err != nil {
			return err
		}
		var err error
		tag, err = EnsureTag(tx, name)
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.TaskTag{}).
			Where("task_id = ? AND tag_id = ?", taskID, tag.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("task: check tag link: %w", err)
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(&models.TaskTag{TaskID: taskID, TagID: tag.ID}).Error; err != nil {
			return fmt.Errorf("task: tag %s: %w", taskID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// UntagTask removes a tag (by name) from a task.
func UntagTask(db *gorm.DB, taskID, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	var tag models.Tag
	if err := db.Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("tag", name)
		}
		return fmt.Errorf("task: lookup tag %q: %w", name, err)
	}
	res := db.Where("task_id = ? AND tag_id = ?", taskID, tag.ID).Delete(&models.TaskTag{})
	if res.Error != nil {
		return fmt.Errorf("task: untag %s: %w", taskID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("task tag", taskID+"/"+name)
	}
	return nil
}

// Tags returns the tags applied to a task, alphabetically.
func Tags(db *gorm.DB, taskID string) ([]models.Tag, error) {
	if _, err := Get(db, taskID); err != nil {
		return nil, err
	}
	var tags []models.Tag
	err := db.Model(&models.Tag{}).
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", taskID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("task: tags of %s: %w", taskID, err)
	}
	return tags, nil
}

// ByTag returns tasks carrying the named tag, newest first.
func ByTag(db *gorm.DB, name string) ([]models.Task, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var tasks []models.Task
	err := db.Model(&models.Task{}).
		Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
		Joins("JOIN tags ON tags.id = task_tags.tag_id").
		Where("tags.name = ?", name).
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("task: by tag %q: %w", name, err)
	}
	return tasks, nil
}
