package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bedstatus-backend/internal/store"
)

// QueryHistory handles GET /api/history. Date-only from/to values are
// widened to inclusive start/end of day; full RFC3339 timestamps are used
// as-is.
func (h *Handler) QueryHistory(c *gin.Context) {
	var f store.HistoryFilter
	f.BedID = c.Query("bed_id")
	f.ServiceID = c.Query("service_id")
	f.Actor = c.Query("actor")

	if raw := c.Query("status_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status_id"})
			return
		}
		f.StatusID = &id
	}

	if raw := c.Query("from"); raw != "" {
		t, err := parseTimeParam(raw, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from': use YYYY-MM-DD or RFC3339"})
			return
		}
		f.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseTimeParam(raw, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to': use YYYY-MM-DD or RFC3339"})
			return
		}
		f.To = &t
	}

	page, err := h.store.QueryHistory(c.Request.Context(), scopeFromRequest(c), f, pageFromRequest(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return day, nil
}
