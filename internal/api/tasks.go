package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hollowoak/farmhand/internal/models"
	"github.com/hollowoak/farmhand/internal/notify"
	"github.com/hollowoak/farmhand/internal/relation"
	"github.com/hollowoak/farmhand/internal/rollup"
	"github.com/hollowoak/farmhand/internal/task"
)

func (s *server) handleTaskList(c *gin.Context) {
	tasks, err := task.List(s.db, task.ListFilters{
		State:       c.Query("state"),
		PlanID:      c.Query("plan"),
		CycleID:     c.Query("cycle"),
		ParentID:    c.Query("parent"),
		Unscheduled: c.Query("unscheduled") == "true",
		Active:      c.Query("active") == "true",
		Completed:   c.Query("completed") == "true",
		Blocked:     c.Query("blocked") == "true",
		Overdue:     c.Query("overdue") == "true",
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type taskCreateReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	State       string     `json:"state"`
	Estimate    *string    `json:"estimate"` // "2h 30m", "45m", or bare minutes
	TargetDate  *time.Time `json:"target_date"`
	PlanID      string     `json:"plan_id"`
	CycleID     *string    `json:"cycle_id"`
	ParentID    *string    `json:"parent_id"`
	AssetIDs    []string   `json:"asset_ids"`
	LocationIDs []string   `json:"location_ids"`
	LogIDs      []string   `json:"log_ids"`
}

func (s *server) handleTaskCreate(c *gin.Context) {
	var req taskCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	opts := task.CreateOpts{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
		TargetDate:  req.TargetDate,
		PlanID:      req.PlanID,
		CycleID:     req.CycleID,
		ParentID:    req.ParentID,
		AssetIDs:    req.AssetIDs,
		LocationIDs: req.LocationIDs,
		LogIDs:      req.LogIDs,
	}
	if req.Estimate != nil {
		minutes, err := rollup.ParseEstimate(*req.Estimate)
		if err != nil {
			s.fail(c, err)
			return
		}
		opts.Estimate = &minutes
	}
	created, err := task.Create(s.db, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.taskJSON(created))
}

// taskJSON decorates a task with its formatted estimate.
func (s *server) taskJSON(t *models.Task) gin.H {
	out := gin.H{"task": t}
	if t.Estimate != nil {
		out["estimate_display"] = rollup.FormatEstimate(*t.Estimate)
	}
	return out
}

func (s *server) handleTaskGet(c *gin.Context) {
	id := c.Param("id")
	t, err := task.Get(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	tags, err := task.Tags(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	blocked, err := relation.IsBlocked(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	relations, err := relation.ForTask(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := s.taskJSON(t)
	out["tags"] = tags
	out["blocked"] = blocked
	out["relations"] = relations
	c.JSON(http.StatusOK, out)
}

type taskUpdateReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	State       *string    `json:"state"`
	Estimate    *string    `json:"estimate"`
	TargetDate  *time.Time `json:"target_date"`
	PlanID      *string    `json:"plan_id"`
	CycleID     *string    `json:"cycle_id"`
	ClearCycle  bool       `json:"clear_cycle"`
	ParentID    *string    `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
}

func (s *server) handleTaskUpdate(c *gin.Context) {
	var req taskUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	opts := task.UpdateOpts{
		Title:       req.Title,
		Description: req.Description,
		State:       req.State,
		TargetDate:  req.TargetDate,
		PlanID:      req.PlanID,
		CycleID:     req.CycleID,
		ClearCycle:  req.ClearCycle,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	}
	if req.Estimate != nil {
		minutes, err := rollup.ParseEstimate(*req.Estimate)
		if err != nil {
			s.fail(c, err)
			return
		}
		opts.Estimate = &minutes
	}
	updated, err := task.Update(s.db, c.Param("id"), opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.taskJSON(updated))
}

func (s *server) handleTaskComplete(c *gin.Context) {
	done, err := task.Complete(s.db, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.announce(c.Request.Context(), notify.Event{
		Kind:  notify.KindTaskCompleted,
		Title: done.Title,
	})
	c.JSON(http.StatusOK, s.taskJSON(done))
}

func (s *server) handleTaskDelete(c *gin.Context) {
	if err := task.Delete(s.db, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type tagReq struct {
	Name string `json:"name"`
}

func (s *server) handleTaskTag(c *gin.Context) {
	var req tagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tag, err := task.TagTask(s.db, c.Param("id"), req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (s *server) handleTaskUntag(c *gin.Context) {
	if err := task.UntagTask(s.db, c.Param("id"), c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) handleRelationList(c *gin.Context) {
	id := c.Param("id")
	relations, err := relation.ForTask(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	blockedBy, err := relation.BlockedByCount(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	blocks, err := relation.BlocksCount(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"relations":        relations,
		"blocked_by_count": blockedBy,
		"blocks_count":     blocks,
	})
}

type relationReq struct {
	TargetID string `json:"target_id"`
	Type     string `json:"type"`
}

func (s *server) handleRelationAdd(c *gin.Context) {
	var req relationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rel, err := relation.Add(s.db, c.Param("id"), req.TargetID, req.Type)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rel)
}

func (s *server) handleRelationRemove(c *gin.Context) {
	if err := relation.Remove(s.db, c.Param("relID")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
