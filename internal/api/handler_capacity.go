package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListServiceCapacities handles GET /api/services: every visible service
// with its live bed counts.
func (h *Handler) ListServiceCapacities(c *gin.Context) {
	summaries, err := h.store.ServiceCapacities(c.Request.Context(), scopeFromRequest(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetServiceCapacity handles GET /api/services/{service_id}/capacity.
func (h *Handler) GetServiceCapacity(c *gin.Context) {
	capacity, err := h.store.ServiceCapacity(c.Request.Context(), scopeFromRequest(c), c.Param("service_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, capacity)
}

// GetSectorCapacity handles GET /api/sectors/{sector_id}/capacity.
func (h *Handler) GetSectorCapacity(c *gin.Context) {
	capacity, err := h.store.SectorCapacity(c.Request.Context(), scopeFromRequest(c), c.Param("sector_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, capacity)
}
