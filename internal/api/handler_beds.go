package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bedstatus-backend/internal/notification"
	"bedstatus-backend/internal/store"
)

type createSectorRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateSector handles POST /api/sectors.
func (h *Handler) CreateSector(c *gin.Context) {
	var req createSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sector, err := h.store.CreateSector(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusCreated, sector)
}

type createServiceRequest struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	SectorID string `json:"sectorId" binding:"required"`
}

// CreateService handles POST /api/services.
func (h *Handler) CreateService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	svc, err := h.store.CreateService(c.Request.Context(), req.ID, req.Name, req.SectorID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusCreated, svc)
}

type createBedRequest struct {
	BedID             string `json:"bedId" binding:"required"`
	ServiceID         string `json:"serviceId"`
	Gender            string `json:"gender"`
	EmergencyReserved bool   `json:"isEmergencyReserved"`
}

// CreateBed handles POST /api/beds.
func (h *Handler) CreateBed(c *gin.Context) {
	var req createBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bed, err := h.store.CreateBed(c.Request.Context(), scopeFromRequest(c), store.CreateBedRequest{
		BedID:             req.BedID,
		ServiceID:         req.ServiceID,
		Gender:            req.Gender,
		EmergencyReserved: req.EmergencyReserved,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusCreated, bed)
}

// GetBed handles GET /api/beds/{bed_id}.
func (h *Handler) GetBed(c *gin.Context) {
	bed, err := h.store.GetBed(c.Request.Context(), scopeFromRequest(c), c.Param("bed_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bed)
}

// ListBeds handles GET /api/beds.
func (h *Handler) ListBeds(c *gin.Context) {
	var f store.BedFilter
	f.ServiceID = c.Query("service_id")
	if raw := c.Query("status_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status_id"})
			return
		}
		f.StatusID = &id
	}

	page, err := h.store.ListBeds(c.Request.Context(), scopeFromRequest(c), f, pageFromRequest(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeleteBed handles DELETE /api/beds/{bed_id}. The bed disappears from
// reads; its ledger entries remain.
func (h *Handler) DeleteBed(c *gin.Context) {
	if err := h.store.DeleteBed(c.Request.Context(), scopeFromRequest(c), c.Param("bed_id")); err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate()
	c.Status(http.StatusNoContent)
}

type transitionRequest struct {
	StatusID    int64      `json:"statusId" binding:"required"`
	SubStatusID *int64     `json:"subStatusId"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	ForWhom     string     `json:"forWhom"`
}

// TransitionBed handles POST /api/beds/{bed_id}/transition.
func (h *Handler) TransitionBed(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.store.Transition(c.Request.Context(), scopeFromRequest(c), c.Param("bed_id"), req.StatusID, store.TransitionRequest{
		Actor:       actorFromRequest(c),
		SubStatusID: req.SubStatusID,
		ScheduledAt: req.ScheduledAt,
		ForWhom:     req.ForWhom,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate()

	if result.Task != nil && h.workerPool != nil {
		h.workerPool.Dispatch(notification.TaskNotice{
			TaskID:    result.Task.ID,
			BedID:     result.Task.BedID,
			ServiceID: result.Task.ServiceID,
			Kind:      result.Task.Kind,
		})
	}

	c.JSON(http.StatusOK, result.Bed)
}

// pageFromRequest parses the shared pagination query parameters.
func pageFromRequest(c *gin.Context) store.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	return store.PageRequest{Page: page, PerPage: perPage}
}
