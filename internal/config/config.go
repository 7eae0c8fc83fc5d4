package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultConfigFileName = "config.toml"

type Config struct {
	DBHost     string `toml:"db_host"`
	DBPort     int    `toml:"db_port"`
	DBUser     string `toml:"db_user"`
	DBPassword string `toml:"db_password"`
	DBName     string `toml:"db_name"`

	Addr      string `toml:"addr"`
	JWTSecret string `toml:"jwt_secret"`

	// Reminder engine tuning. The reminder check and the table refresh run
	// on independent cadences; the re-arm expiry and the upcoming window
	// are the same magnitude by default but are separate knobs.
	ReminderCheckSeconds  int `toml:"reminder_check_seconds"`
	ViewRefreshSeconds    int `toml:"view_refresh_seconds"`
	RearmAfterMinutes     int `toml:"rearm_after_minutes"`
	UpcomingWindowMinutes int `toml:"upcoming_window_minutes"`
}

// Load reads configuration from the environment, then applies overrides
// from an optional TOML file (CONFIG_FILE, falling back to ./config.toml).
func Load() *Config {
	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		port = 5432 // fallback
	}

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     port,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		Addr:      os.Getenv("ADDR"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		ReminderCheckSeconds:  10,
		ViewRefreshSeconds:    60,
		RearmAfterMinutes:     60,
		UpcomingWindowMinutes: 60,
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultConfigFileName
	}
	if err := applyFile(cfg, path); err != nil {
		log.Printf("[WARN] config file %s: %v", path, err)
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return toml.Unmarshal(data, cfg)
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.ReminderCheckSeconds) * time.Second
}

func (c *Config) ViewRefreshInterval() time.Duration {
	return time.Duration(c.ViewRefreshSeconds) * time.Second
}

func (c *Config) RearmAfter() time.Duration {
	return time.Duration(c.RearmAfterMinutes) * time.Minute
}

func (c *Config) UpcomingWindow() time.Duration {
	return time.Duration(c.UpcomingWindowMinutes) * time.Minute
}
