// Package config reads gomol settings from a .env file and the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the CLI and the GUI
type Config struct {
	LogLevel              string
	LogFormat             string
	Viewports             int
	Background            string
	StructureColor        string
	DefaultRepresentation string
	AnimationFPS          int
	StatusAddr            string
	Watch                 bool
}

// Load reads the .env file and sets environment variables. A missing file is
// an error callers may ignore. With no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// FromEnv builds a Config from the environment, falling back to defaults
func FromEnv() Config {
	cfg := Config{
		LogLevel:              GetEnv("GOMOL_LOG_LEVEL", "info"),
		LogFormat:             GetEnv("GOMOL_LOG_FORMAT", "text"),
		Viewports:             GetEnvInt("GOMOL_VIEWPORTS", 2),
		Background:            GetEnv("GOMOL_BACKGROUND", "#000000"),
		StructureColor:        GetEnv("GOMOL_STRUCTURE_COLOR", "#ffffff"),
		DefaultRepresentation: GetEnv("GOMOL_DEFAULT_REPRESENTATION", "cartoon"),
		AnimationFPS:          GetEnvInt("GOMOL_ANIMATION_FPS", 30),
		StatusAddr:            GetEnv("GOMOL_STATUS_ADDR", ""),
		Watch:                 GetEnvBool("GOMOL_WATCH", true),
	}
	if cfg.Viewports < 1 {
		cfg.Viewports = 1
	}
	if cfg.AnimationFPS < 1 {
		cfg.AnimationFPS = 30
	}
	return cfg
}

// GetEnv returns the value of key, or fallback if unset or empty
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of key, or fallback if unset or invalid
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvBool returns the boolean value of key, or fallback if unset or invalid
func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return fallback
}
