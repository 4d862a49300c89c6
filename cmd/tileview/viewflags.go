package main

import (
	"flag"

	"github.com/eak1mov/go-tileloader/internal/config"
	"github.com/eak1mov/go-tileloader/loader"
	"github.com/eak1mov/go-tileloader/view"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// viewFlags describes the simulated viewport shared by the plan and load commands.
type viewFlags struct {
	lon        float64
	lat        float64
	zoom       float64
	width      int
	height     int
	tileSize   int
	zoomOffset int
}

func (v *viewFlags) register(f *flag.FlagSet, cfg *config.Config) {
	f.Float64Var(&v.lon, "lon", 0, "Viewport center longitude")
	f.Float64Var(&v.lat, "lat", 0, "Viewport center latitude")
	f.Float64Var(&v.zoom, "zoom", 2, "Viewport zoom level, may be fractional")
	f.IntVar(&v.width, "width", 1024, "Viewport width in pixels")
	f.IntVar(&v.height, "height", 768, "Viewport height in pixels")
	f.IntVar(&v.tileSize, "tile-size", cfg.TileSize, "Tile size in pixels")
	f.IntVar(&v.zoomOffset, "zoom-offset", cfg.ZoomOffset, "Offset added to the tile zoom level")
}

func (v *viewFlags) newView() *view.Map {
	return view.New(orb.Point{v.lon, v.lat}, v.zoom, v.width, v.height)
}

func (v *viewFlags) newManager(log *zap.Logger) *loader.Manager {
	return loader.New(nil,
		loader.WithTileSize(v.tileSize),
		loader.WithZoomOffset(v.zoomOffset),
		loader.WithLogger(log),
	)
}
