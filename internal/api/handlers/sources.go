package handlers

import (
	"net/http"

	"pricecast/internal/api/models"
	"pricecast/internal/data"

	"github.com/gin-gonic/gin"
)

// SourcesHandler reports the supported data sources.
type SourcesHandler struct{}

func NewSourcesHandler() *SourcesHandler {
	return &SourcesHandler{}
}

// List handles GET /api/v1/sources.
func (h *SourcesHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, models.SourcesResponse{Sources: data.Types()})
}

// Health handles GET /health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
