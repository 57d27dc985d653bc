// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

type Config struct {
	Port              string
	DBPath            string
	Location          *time.Location
	Locale            language.Tag
	BakeryName        string
	LogLevel          logrus.Level
	LogFormat         string
	SchedulerEnabled  bool
	SchedulerInterval time.Duration
	CORSOrigins       []string
	SeedProducts      bool
}

// Load reads configuration from the environment with sensible defaults.
// Precedence: explicit env var > .env file (if present) > default.
func Load() (Config, error) {
	// A missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "bakery.db"),
		BakeryName:        getEnv("BAKERY_NAME", ""),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
		SchedulerEnabled:  parseBool("SCHEDULER_ENABLED", true),
		SchedulerInterval: parseDuration("SCHEDULER_INTERVAL", time.Hour),
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
		SeedProducts:      parseBool("SEED_PRODUCTS", true),
	}

	loc, err := time.LoadLocation(getEnv("TZ_NAME", "Europe/Rome"))
	if err != nil {
		return Config{}, fmt.Errorf("TZ_NAME: %w", err)
	}
	cfg.Location = loc

	tag, err := language.Parse(getEnv("LOCALE", "it"))
	if err != nil {
		return Config{}, fmt.Errorf("LOCALE: %w", err)
	}
	cfg.Locale = tag

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
}

// NewLogger builds the process logger from the configured level and format.
func (c Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBool reads an env var as bool with default.
func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logrus.Warnf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			logrus.Warnf("invalid duration for %s: %s", key, v)
			return def
		}
		return d
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
