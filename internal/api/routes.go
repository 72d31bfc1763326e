package api

import (
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all API routes.
func (s *server) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.GET("/summary", s.handleSummary)

	assets := api.Group("/assets")
	assets.GET("", s.handleAssetList)
	assets.POST("", s.handleAssetCreate)
	assets.GET("/:id", s.handleAssetGet)
	assets.PATCH("/:id", s.handleAssetUpdate)
	assets.POST("/:id/move", s.handleAssetMove)
	assets.POST("/:id/archive", s.handleAssetArchive)
	assets.POST("/:id/unarchive", s.handleAssetUnarchive)

	locations := api.Group("/locations")
	locations.GET("", s.handleLocationList)
	locations.POST("", s.handleLocationCreate)
	locations.GET("/:id", s.handleLocationGet)
	locations.PATCH("/:id", s.handleLocationUpdate)
	locations.POST("/:id/archive", s.handleLocationArchive)

	logs := api.Group("/logs")
	logs.GET("", s.handleLogList)
	logs.POST("", s.handleLogCreate)
	logs.GET("/:id", s.handleLogGet)
	logs.POST("/:id/done", s.handleLogDone)

	tasks := api.Group("/tasks")
	tasks.GET("", s.handleTaskList)
	tasks.POST("", s.handleTaskCreate)
	tasks.GET("/:id", s.handleTaskGet)
	tasks.PATCH("/:id", s.handleTaskUpdate)
	tasks.DELETE("/:id", s.handleTaskDelete)
	tasks.POST("/:id/complete", s.handleTaskComplete)
	tasks.POST("/:id/tags", s.handleTaskTag)
	tasks.DELETE("/:id/tags/:name", s.handleTaskUntag)
	tasks.GET("/:id/relations", s.handleRelationList)
	tasks.POST("/:id/relations", s.handleRelationAdd)
	tasks.DELETE("/:id/relations/:relID", s.handleRelationRemove)

	plans := api.Group("/plans")
	plans.GET("", s.handlePlanList)
	plans.POST("", s.handlePlanCreate)
	plans.GET("/:id", s.handlePlanGet)
	plans.PATCH("/:id", s.handlePlanUpdate)
	plans.DELETE("/:id", s.handlePlanDelete)
	plans.POST("/:id/tasks/:taskID", s.handlePlanTaskRefAdd)
	plans.DELETE("/:id/tasks/:taskID", s.handlePlanTaskRefRemove)

	cycles := api.Group("/cycles")
	cycles.GET("", s.handleCycleList)
	cycles.POST("", s.handleCycleCreate)
	cycles.GET("/current", s.handleCycleCurrent)
	cycles.POST("/current", s.handleCycleEnsureCurrent)
	cycles.POST("/generate", s.handleCycleGenerate)
	cycles.GET("/:id", s.handleCycleGet)
	cycles.PATCH("/:id", s.handleCycleUpdate)
	cycles.DELETE("/:id", s.handleCycleDelete)
}
