package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hollowoak/farmhand/internal/asset"
	"github.com/hollowoak/farmhand/internal/hierarchy"
	"github.com/hollowoak/farmhand/internal/models"
	"github.com/hollowoak/farmhand/internal/notify"
	"github.com/hollowoak/farmhand/internal/refindex"
)

func (s *server) handleAssetList(c *gin.Context) {
	assets, err := asset.List(s.db, asset.ListFilters{
		AssetType:       c.Query("type"),
		LocationID:      c.Query("location"),
		ParentID:        c.Query("parent"),
		IncludeArchived: c.Query("archived") == "true",
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

type assetCreateReq struct {
	Name       string  `json:"name"`
	AssetType  string  `json:"asset_type"`
	Notes      string  `json:"notes"`
	Quantity   *int    `json:"quantity"`
	LocationID *string `json:"location_id"`
	ParentID   *string `json:"parent_id"`
}

func (s *server) handleAssetCreate(c *gin.Context) {
	var req assetCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := asset.Create(s.db, asset.CreateOpts{
		Name:              req.Name,
		AssetType:         req.AssetType,
		Notes:             req.Notes,
		Quantity:          req.Quantity,
		CurrentLocationID: req.LocationID,
		ParentID:          req.ParentID,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// handleAssetGet returns the asset with its tree position and the
// tasks, plans and logs that reference it.
func (s *server) handleAssetGet(c *gin.Context) {
	id := c.Param("id")
	a, err := asset.Get(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	depth, err := hierarchy.Depth[models.Asset](s.db, "asset", id)
	if err != nil {
		s.fail(c, err)
		return
	}
	children, err := hierarchy.ChildCount[models.Asset](s.db, "asset", id)
	if err != nil {
		s.fail(c, err)
		return
	}
	refs, err := refindex.ForAsset(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset":       a,
		"depth":       depth,
		"child_count": children,
		"references":  refs,
	})
}

type assetUpdateReq struct {
	Name        *string `json:"name"`
	Notes       *string `json:"notes"`
	Quantity    *int    `json:"quantity"`
	ParentID    *string `json:"parent_id"`
	ClearParent bool    `json:"clear_parent"`
}

func (s *server) handleAssetUpdate(c *gin.Context) {
	var req assetUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := asset.Update(s.db, c.Param("id"), asset.UpdateOpts{
		Name:        req.Name,
		Notes:       req.Notes,
		Quantity:    req.Quantity,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type assetMoveReq struct {
	ToLocationID string `json:"to_location_id"`
	Notes        string `json:"notes"`
}

func (s *server) handleAssetMove(c *gin.Context) {
	var req assetMoveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	log, err := asset.Move(s.db, c.Param("id"), req.ToLocationID, req.Notes)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.announce(c.Request.Context(), notify.Event{
		Kind:  notify.KindAssetMoved,
		Title: log.Name,
		Body:  req.Notes,
	})
	c.JSON(http.StatusOK, gin.H{"movement": log})
}

func (s *server) handleAssetArchive(c *gin.Context) {
	archived, err := asset.Archive(s.db, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, archived)
}

func (s *server) handleAssetUnarchive(c *gin.Context) {
	restored, err := asset.Unarchive(s.db, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, restored)
}
