package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bedstatus-backend/internal/store"
)

// ListTasks handles GET /api/tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	var f store.TaskFilter
	f.Search = c.Query("q")
	f.SortBy = c.Query("sort")
	f.Desc = c.Query("order") == "desc"

	if raw := c.Query("kind"); raw != "" {
		kind, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
			return
		}
		f.Kind = &kind
	}
	if raw := c.Query("done"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid done flag"})
			return
		}
		f.Done = &done
	}
	if raw := c.Query("urgent"); raw != "" {
		urgent, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid urgent flag"})
			return
		}
		f.Urgent = &urgent
	}

	page, err := h.store.ListTasks(c.Request.Context(), scopeFromRequest(c), f, pageFromRequest(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type taskPatchRequest struct {
	Done        *bool      `json:"done"`
	Urgent      *bool      `json:"urgent"`
	Assignee    *string    `json:"assignee"`
	CompletedAt *time.Time `json:"completedAt"`
	CategoryID  *int64     `json:"categoryId"`
}

// UpdateTask handles PATCH /api/tasks/{task_id}. Closing a task never
// transitions the bed; that stays an explicit, separate call.
func (h *Handler) UpdateTask(c *gin.Context) {
	var req taskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.store.UpdateTask(c.Request.Context(), scopeFromRequest(c), c.Param("task_id"), store.TaskPatch{
		Done:        req.Done,
		Urgent:      req.Urgent,
		Assignee:    req.Assignee,
		CompletedAt: req.CompletedAt,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusOK, task)
}
