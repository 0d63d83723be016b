package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"bedstatus-backend/config"
	"bedstatus-backend/internal/model"
)

// Init initializes the database connection, runs migrations and seeds the
// reference data.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs the schema migrations and idempotent seeding. Split out of
// Init so tests can run it against an in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Status{},
		&model.Sector{},
		&model.Service{},
		&model.Bed{},
		&model.HistoryEntry{},
		&model.Counter{},
		&model.TaskItem{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return seed(db)
}

// seed inserts the status catalog and the history counter row. Both are
// append-only: existing rows are never modified.
func seed(db *gorm.DB) error {
	catalog := model.Catalog()
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&catalog).Error; err != nil {
		return fmt.Errorf("failed to seed status catalog: %w", err)
	}

	counter := model.Counter{Name: model.HistoryCounterName, Value: 0}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
		return fmt.Errorf("failed to seed history counter: %w", err)
	}
	return nil
}
