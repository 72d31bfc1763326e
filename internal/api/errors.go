package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hollowoak/farmhand/internal/apperr"
)

// fail maps service errors to HTTP responses: not-found to 404,
// validation (including cycles) to 422, everything else to 500.
func (s *server) fail(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.log.Error("internal error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// badRequest rejects malformed request bodies.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
