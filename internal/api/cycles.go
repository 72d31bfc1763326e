package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hollowoak/farmhand/internal/apperr"
	"github.com/hollowoak/farmhand/internal/cycle"
	"github.com/hollowoak/farmhand/internal/models"
	"github.com/hollowoak/farmhand/internal/notify"
	"github.com/hollowoak/farmhand/internal/rollup"
)

func (s *server) handleCycleList(c *gin.Context) {
	filter := cycle.ListAll
	switch c.Query("window") {
	case "current":
		filter = cycle.ListCurrent
	case "past":
		filter = cycle.ListPast
	case "future":
		filter = cycle.ListFuture
	}
	cycles, err := cycle.List(s.db, filter, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycles": cycles})
}

type cycleCreateReq struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

func (s *server) handleCycleCreate(c *gin.Context) {
	var req cycleCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := cycle.Create(s.db, cycle.CreateOpts{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// cycleJSON decorates a cycle with its day math and task tallies.
func (s *server) cycleJSON(cyc *models.Cycle) (gin.H, error) {
	now := time.Now()
	tally, err := rollup.CycleTally(s.db, cyc.ID)
	if err != nil {
		return nil, err
	}
	totals, err := rollup.CycleEstimates(s.db, cyc.ID)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"cycle":              cyc,
		"total_days":         rollup.CycleTotalDays(*cyc),
		"days_elapsed":       rollup.CycleDaysElapsed(*cyc, now),
		"days_remaining":     rollup.CycleDaysRemaining(*cyc, now),
		"is_current":         rollup.CycleIsCurrent(*cyc, now),
		"is_past":            rollup.CycleIsPast(*cyc, now),
		"is_future":          rollup.CycleIsFuture(*cyc, now),
		"date_progress":      rollup.CycleDateProgress(*cyc, now),
		"task_count":         tally.Total,
		"completed_count":    tally.Completed,
		"progress":           tally.Progress(),
		"estimate_total":     rollup.FormatEstimate(totals.TotalMinutes),
		"estimate_completed": rollup.FormatEstimate(totals.CompletedMinutes),
	}, nil
}

func (s *server) handleCycleGet(c *gin.Context) {
	cyc, err := cycle.Get(s.db, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.cycleJSON(cyc)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) handleCycleCurrent(c *gin.Context) {
	cyc, err := cycle.FindCurrent(s.db, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.cycleJSON(cyc)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) handleCycleEnsureCurrent(c *gin.Context) {
	now := time.Now()
	_, findErr := cycle.FindCurrent(s.db, now)
	cyc, err := cycle.EnsureCurrent(s.db, now)
	if err != nil {
		s.fail(c, err)
		return
	}
	if apperr.IsNotFound(findErr) {
		s.announce(c.Request.Context(), notify.FormatCycleEvent(*cyc, rollup.CycleTotalDays(*cyc)))
	}
	out, err := s.cycleJSON(cyc)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type cycleGenerateReq struct {
	StartDate    time.Time `json:"start_date"`
	Count        int       `json:"count"`
	DurationDays int       `json:"duration_days"`
}

func (s *server) handleCycleGenerate(c *gin.Context) {
	var req cycleGenerateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.StartDate.IsZero() {
		req.StartDate = time.Now()
	}
	if req.DurationDays == 0 {
		req.DurationDays = cycle.DefaultDurationDays
	}
	cycles, err := cycle.Generate(s.db, req.StartDate, req.Count, req.DurationDays)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cycles": cycles})
}

type cycleUpdateReq struct {
	Name      *string    `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (s *server) handleCycleUpdate(c *gin.Context) {
	var req cycleUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := cycle.Update(s.db, c.Param("id"), req.Name, req.StartDate, req.EndDate)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *server) handleCycleDelete(c *gin.Context) {
	if err := cycle.Delete(s.db, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
