package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hollowoak/farmhand/internal/farmlog"
	"github.com/hollowoak/farmhand/internal/refindex"
)

func (s *server) handleLogList(c *gin.Context) {
	filters := farmlog.ListFilters{
		LogType: c.Query("type"),
		Status:  c.Query("status"),
		AssetID: c.Query("asset"),
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			badRequest(c, err)
			return
		}
		filters.Since = t
	}
	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			badRequest(c, err)
			return
		}
		filters.Until = t
	}
	logs, err := farmlog.List(s.db, filters)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

type logCreateReq struct {
	Name           string     `json:"name"`
	LogType        string     `json:"log_type"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes"`
	Timestamp      *time.Time `json:"timestamp"`
	FromLocationID *string    `json:"from_location_id"`
	ToLocationID   *string    `json:"to_location_id"`
	AssetIDs       []string   `json:"asset_ids"`
}

func (s *server) handleLogCreate(c *gin.Context) {
	var req logCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	opts := farmlog.CreateOpts{
		Name:           req.Name,
		LogType:        req.LogType,
		Status:         req.Status,
		Notes:          req.Notes,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		AssetIDs:       req.AssetIDs,
	}
	if req.Timestamp != nil {
		opts.Timestamp = *req.Timestamp
	}
	created, err := farmlog.Create(s.db, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) handleLogGet(c *gin.Context) {
	id := c.Param("id")
	log, err := farmlog.Get(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	assets, err := farmlog.Assets(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	refs, err := refindex.ForLog(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"log":        log,
		"assets":     assets,
		"references": refs,
	})
}

func (s *server) handleLogDone(c *gin.Context) {
	done, err := farmlog.MarkDone(s.db, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, done)
}
