package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/cycle"
	"github.com/hollowoak/farmhand/internal/models"
	"github.com/hollowoak/farmhand/internal/task"
)

// handleSummary returns a whole-farm snapshot: entity counts, open
// work, and the current cycle if one is underway.
func (s *server) handleSummary(c *gin.Context) {
	counts := gin.H{}
	for name, model := range map[string]interface{}{
		"assets":    &models.Asset{},
		"locations": &models.Location{},
		"logs":      &models.FarmLog{},
		"tasks":     &models.Task{},
		"plans":     &models.Plan{},
		"cycles":    &models.Cycle{},
	} {
		var n int64
		if err := s.db.Model(model).Count(&n).Error; err != nil {
			s.fail(c, err)
			return
		}
		counts[name] = n
	}

	now := time.Now()
	active, err := task.List(s.db, task.ListFilters{Active: true})
	if err != nil {
		s.fail(c, err)
		return
	}
	overdue, err := task.List(s.db, task.ListFilters{Overdue: true, Now: now})
	if err != nil {
		s.fail(c, err)
		return
	}
	blocked, err := task.List(s.db, task.ListFilters{Blocked: true})
	if err != nil {
		s.fail(c, err)
		return
	}

	out := gin.H{
		"counts":        counts,
		"active_tasks":  len(active),
		"overdue_tasks": len(overdue),
		"blocked_tasks": len(blocked),
	}

	current, err := cycle.FindCurrent(s.db, now)
	switch {
	case err == nil:
		cycleOut, err := s.cycleJSON(current)
		if err != nil {
			s.fail(c, err)
			return
		}
		out["current_cycle"] = cycleOut
	case apperr.IsNotFound(err):
		// No cycle underway; summary still renders.
	default:
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
