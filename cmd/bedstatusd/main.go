package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bedstatus-backend/config"
	"bedstatus-backend/internal/api"
	"bedstatus-backend/internal/db"
	"bedstatus-backend/internal/notification"
	"bedstatus-backend/internal/schedule"
	"bedstatus-backend/internal/store"
	"bedstatus-backend/internal/sweep"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "bedstatus-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("push is enabled but VAPID keys are not configured")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Transition policy and working hours are plain values handed to the
	// store once; nothing reads mutable settings at runtime.
	policy := store.Policy{
		GateInactive:           cfg.Policy.GateInactive,
		RequireReservationTime: cfg.Policy.RequireReservationTime,
		CleaningHours: schedule.Window{
			Start:       cfg.Policy.CleaningHours.Start,
			End:         cfg.Policy.CleaningHours.End,
			SlotMinutes: cfg.Policy.CleaningHours.SlotMinutes,
		},
		MaintenanceHours: schedule.Window{
			Start:       cfg.Policy.MaintenanceHours.Start,
			End:         cfg.Policy.MaintenanceHours.End,
			SlotMinutes: cfg.Policy.MaintenanceHours.SlotMinutes,
		},
	}

	appStore := store.NewGormStore(gormDB, policy)
	logger.Println("data store initialized")

	var workerPool *notification.WorkerPool
	if webpushOptions != nil {
		workerPool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		workerPool.Start(ctx)
		logger.Printf("notification worker pool started (size %d)", cfg.WorkerPool.Size)
	}

	// Run the overdue-task sweeper in the background
	sweeper := sweep.NewService(cfg, appStore, workerPool)
	go sweeper.Run(ctx)

	// Initialize router
	router := api.NewRouter(cfg, appStore, webpushOptions, workerPool)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
