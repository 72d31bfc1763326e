package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/location"
	"github.com/hollowoak/farmhand/internal/models"
	"github.com/hollowoak/farmhand/internal/refindex"
	"github.com/hollowoak/farmhand/internal/rollup"
)

func (s *server) handleLocationList(c *gin.Context) {
	locs, err := location.List(s.db, location.ListFilters{
		ParentID:        c.Query("parent"),
		Roots:           c.Query("roots") == "true",
		IncludeArchived: c.Query("archived") == "true",
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locs})
}

type locationCreateReq struct {
	Name      string  `json:"name"`
	Notes     string  `json:"notes"`
	AreaAcres float64 `json:"area_acres"`
	ParentID  *string `json:"parent_id"`
}

func (s *server) handleLocationCreate(c *gin.Context) {
	var req locationCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := location.Create(s.db, location.CreateOpts{
		Name:      req.Name,
		Notes:     req.Notes,
		AreaAcres: req.AreaAcres,
		ParentID:  req.ParentID,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// handleLocationGet returns the location with asset counts both for the
// location itself and rolled up through its subtree.
func (s *server) handleLocationGet(c *gin.Context) {
	id := c.Param("id")
	loc, err := location.Get(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	direct, err := rollup.DirectAssetCount(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	total, err := rollup.TotalAssetCount(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	depth, err := hierarchy.Depth[models.Location](s.db, "location", id)
	if err != nil {
		s.fail(c, err)
		return
	}
	refs, err := refindex.ForLocation(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location":           loc,
		"depth":              depth,
		"direct_asset_count": direct,
		"total_asset_count":  total,
		"references":         refs,
	})
}

type locationUpdateReq struct {
	Name        *string  `json:"name"`
	Notes       *string  `json:"notes"`
	AreaAcres   *float64 `json:"area_acres"`
	ParentID    *string  `json:"parent_id"`
	ClearParent bool     `json:"clear_parent"`
}

func (s *server) handleLocationUpdate(c *gin.Context) {
	var req locationUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := location.Update(s.db, c.Param("id"), location.UpdateOpts{
		Name:        req.Name,
		Notes:       req.Notes,
		AreaAcres:   req.AreaAcres,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *server) handleLocationArchive(c *gin.Context) {
	archived, err := location.Archive(s.db, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, archived)
}
