package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"bedstatus-backend/internal/notification"
	"bedstatus-backend/internal/store"
	"bedstatus-backend/internal/visibility"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	webpush    *webpush.Options
	workerPool *notification.WorkerPool
	cacheStore *cache.Cache
}

// NewHandler creates a new API handler. workerPool may be nil when push is
// disabled; cacheStore may be nil when response caching is off.
func NewHandler(s store.Store, webpushOptions *webpush.Options, wp *notification.WorkerPool, cacheStore *cache.Cache) *Handler {
	return &Handler{
		store:      s,
		webpush:    webpushOptions,
		workerPool: wp,
		cacheStore: cacheStore,
	}
}

// invalidate drops every cached GET response. Called on each write path so
// no cached capacity or bed listing can outlive a bed write.
func (h *Handler) invalidate() {
	if h.cacheStore != nil {
		h.cacheStore.Flush()
	}
}

// scopeFromRequest builds a visibility scope from the identity headers set
// by the upstream auth layer. The role string is trusted; unknown roles
// collapse to the service-scoped variant with an empty set, which matches
// nothing.
func scopeFromRequest(c *gin.Context) visibility.Scope {
	switch c.GetHeader("X-Role") {
	case "manager", "admin":
		return visibility.Manager()
	case "cleaning":
		return visibility.CleaningStaff()
	case "maintenance":
		return visibility.MaintenanceStaff()
	}

	raw := strings.TrimSpace(c.GetHeader("X-Services"))
	if raw == "" {
		return visibility.ServiceScoped()
	}
	parts := strings.Split(raw, ",")
	services := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			services = append(services, p)
		}
	}
	return visibility.ServiceScoped(services...)
}

// actorFromRequest returns the authenticated caller identity.
func actorFromRequest(c *gin.Context) string {
	return c.GetHeader("X-Actor")
}

// abortWithError maps a store error to an HTTP response.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrBedNotFound),
		errors.Is(err, store.ErrServiceNotFound),
		errors.Is(err, store.ErrSectorNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrStatusUnknown),
		errors.Is(err, store.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
