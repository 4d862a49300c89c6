package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eak1mov/go-tileloader/mb"
	"github.com/eak1mov/go-tileloader/tile"
	"github.com/eak1mov/go-tileloader/xyz"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

type tileSource interface {
	tile.Reader
	tile.Visitor
}

func deduceFormat(format, filePath string) string {
	if format == "" && strings.HasSuffix(filePath, ".mbtiles") {
		return "mbtiles"
	}
	if format == "" {
		return "xyz"
	}
	return format
}

func openSource(format, path string, log *zap.Logger) (tileSource, error) {
	switch deduceFormat(format, path) {
	case "mbtiles":
		return mb.NewReader(path, mb.WithLogger(log))
	case "xyz":
		return xyz.NewReader(path)
	}
	return nil, fmt.Errorf("invalid input format: %q", format)
}

func closeSource(src tileSource) error {
	if closer, ok := src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// parseCenters parses a list of "lon,lat" pairs separated by semicolons.
func parseCenters(s string) ([]orb.Point, error) {
	var centers []orb.Point
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		lonStr, latStr, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("invalid center %q, want lon,lat", pair)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", pair, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", pair, err)
		}
		centers = append(centers, orb.Point{lon, lat})
	}
	return centers, nil
}
