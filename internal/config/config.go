package config

import (
	"os"
	"strconv"
)

// Config holds the tileview defaults. Command line flags override them.
type Config struct {
	LogLevel   string
	TileSize   int
	Workers    int
	CacheTiles int
	ZoomOffset int
}

func Load() *Config {
	return &Config{
		LogLevel:   getEnv("TILEVIEW_LOG_LEVEL", "info"),
		TileSize:   getEnvInt("TILEVIEW_TILE_SIZE", 256),
		Workers:    getEnvInt("TILEVIEW_WORKERS", 4),
		CacheTiles: getEnvInt("TILEVIEW_CACHE_TILES", 1024),
		ZoomOffset: getEnvInt("TILEVIEW_ZOOM_OFFSET", 0),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
