package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hollowoak/farmhand/internal/plan"
	"github.com/hollowoak/farmhand/internal/refindex"
	"github.com/hollowoak/farmhand/internal/rollup"
)

func (s *server) handlePlanList(c *gin.Context) {
	plans, err := plan.List(s.db, plan.ListFilters{
		Status:   c.Query("status"),
		ParentID: c.Query("parent"),
		Roots:    c.Query("roots") == "true",
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type planCreateReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	ParentID    *string  `json:"parent_id"`
	AssetIDs    []string `json:"asset_ids"`
	LocationIDs []string `json:"location_ids"`
	LogIDs      []string `json:"log_ids"`
	TaskIDs     []string `json:"task_ids"`
}

func (s *server) handlePlanCreate(c *gin.Context) {
	var req planCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := plan.Create(s.db, plan.CreateOpts{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		ParentID:    req.ParentID,
		AssetIDs:    req.AssetIDs,
		LocationIDs: req.LocationIDs,
		LogIDs:      req.LogIDs,
		TaskIDs:     req.TaskIDs,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// handlePlanGet returns the plan with its completion tallies, estimate
// totals and everything it references.
func (s *server) handlePlanGet(c *gin.Context) {
	id := c.Param("id")
	p, err := plan.Get(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	direct, err := rollup.PlanTally(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	rolled, err := rollup.RolledUpPlanTally(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	totals, err := rollup.PlanEstimates(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	refs, err := refindex.ForPlan(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan":               p,
		"task_count":         direct.Total,
		"completed_count":    direct.Completed,
		"progress":           direct.Progress(),
		"rolled_up_tasks":    rolled.Total,
		"rolled_up_progress": rolled.Progress(),
		"estimate_total":     rollup.FormatEstimate(totals.TotalMinutes),
		"estimate_completed": rollup.FormatEstimate(totals.CompletedMinutes),
		"references":         refs,
	})
}

type planUpdateReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	ParentID    *string `json:"parent_id"`
	ClearParent bool    `json:"clear_parent"`
}

func (s *server) handlePlanUpdate(c *gin.Context) {
	var req planUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := plan.Update(s.db, c.Param("id"), plan.UpdateOpts{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *server) handlePlanDelete(c *gin.Context) {
	if err := plan.Delete(s.db, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) handlePlanTaskRefAdd(c *gin.Context) {
	if err := plan.AddTaskRef(s.db, c.Param("id"), c.Param("taskID")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *server) handlePlanTaskRefRemove(c *gin.Context) {
	if err := plan.RemoveTaskRef(s.db, c.Param("id"), c.Param("taskID")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
