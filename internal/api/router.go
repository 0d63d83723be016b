package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"bedstatus-backend/config"
	"bedstatus-backend/internal/mw"
	"bedstatus-backend/internal/notification"
	"bedstatus-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, webpushOptions *webpush.Options, wp *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	rps := cfg.Server.RateLimitPerSec
	if rps <= 0 {
		rps = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rps), 5)

	ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	handler := NewHandler(s, webpushOptions, wp, cacheStore)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Provisioning
		api.POST("/sectors", handler.CreateSector)
		api.POST("/services", handler.CreateService)
		api.POST("/beds", handler.CreateBed)
		api.DELETE("/beds/:bed_id", handler.DeleteBed)

		// Bed state
		api.GET("/beds", caching, handler.ListBeds)
		api.GET("/beds/:bed_id", handler.GetBed)
		api.POST("/beds/:bed_id/transition", handler.TransitionBed)

		// Capacity (always recomputed; cache flushed on every write)
		api.GET("/services", caching, handler.ListServiceCapacities)
		api.GET("/services/:service_id/capacity", caching, handler.GetServiceCapacity)
		api.GET("/sectors/:sector_id/capacity", caching, handler.GetSectorCapacity)

		// Ledger and tasks
		api.GET("/history", handler.QueryHistory)
		api.GET("/tasks", handler.ListTasks)
		api.PATCH("/tasks/:task_id", handler.UpdateTask)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
