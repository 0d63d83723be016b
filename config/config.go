package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Policy     PolicyConfig     `yaml:"policy"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PolicyConfig holds the transition-policy knobs and working-hour windows.
// These are plain values handed to the store at construction; there is no
// runtime-mutable settings object.
type PolicyConfig struct {
	GateInactive           bool         `yaml:"gate_inactive"`
	RequireReservationTime bool         `yaml:"require_reservation_time"`
	CleaningHours          WindowConfig `yaml:"cleaning_hours"`
	MaintenanceHours       WindowConfig `yaml:"maintenance_hours"`
}

// WindowConfig describes a daily working-hour window with slot granularity.
// An empty start/end disables the window check.
type WindowConfig struct {
	Start       string `yaml:"start"` // e.g. "08:00"
	End         string `yaml:"end"`   // e.g. "18:00"
	SlotMinutes int    `yaml:"slot_minutes"`
}

// SweepConfig holds the overdue-task sweeper configuration.
type SweepConfig struct {
	Enabled             bool          `yaml:"enabled"`
	IntervalSeconds     int           `yaml:"interval_seconds"`
	Interval            time.Duration `yaml:"-"` // Ignored by YAML parser
	OverdueGraceMinutes int           `yaml:"overdue_grace_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Sweep.IntervalSeconds <= 0 {
		cfg.Sweep.IntervalSeconds = 300
	}
	cfg.Sweep.Interval = time.Duration(cfg.Sweep.IntervalSeconds) * time.Second

	if cfg.Sweep.OverdueGraceMinutes <= 0 {
		cfg.Sweep.OverdueGraceMinutes = 15
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
