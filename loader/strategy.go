package loader

import (
	"fmt"
	"math"

	"github.com/eak1mov/go-tileloader/projection"
	"github.com/eak1mov/go-tileloader/tile"
	"github.com/paulmach/orb"
)

// Strategy computes which tiles cover a viewport and where they are drawn.
type Strategy interface {
	// TileRange returns the inclusive range of tiles intersecting the viewport at zoom.
	TileRange(view Viewport, zoom int) (tile.Range, error)

	// TilePosition returns the viewport pixel position of the tile's top-left corner.
	TilePosition(view Viewport, p tile.Point) (Position, error)
}

// TileGrid is a host tiling scheme able to answer range and extent queries.
type TileGrid interface {
	TileRange(extent orb.Bound, zoom int) (tile.Range, error)
	TileExtent(p tile.Point) (orb.Bound, error)
}

// GridStrategy delegates tile math to a host tile grid and placement to the
// viewport's own geo to pixel conversion.
type GridStrategy struct {
	Grid TileGrid
}

func (s GridStrategy) TileRange(view Viewport, zoom int) (tile.Range, error) {
	return s.Grid.TileRange(view.Extent(), zoom)
}

func (s GridStrategy) TilePosition(view Viewport, p tile.Point) (Position, error) {
	extent, err := s.Grid.TileExtent(p)
	if err != nil {
		return Position{}, err
	}
	x, y := view.PixelFromCoordinate(orb.Point{extent.Min.Lon(), extent.Max.Lat()})
	return Position{X: x, Y: y}, nil
}

// ProjectionStrategy computes tile ranges with the Web-Mercator projection and
// places tiles relative to the world copy that contains the viewport center.
type ProjectionStrategy struct {
	// TileSize is the tile edge length in pixels. Zero means the manager's
	// configured tile size (see WithTileSize), or DefaultTileSize outside a manager.
	TileSize int
}

func (s ProjectionStrategy) tileSize() int {
	if s.TileSize <= 0 {
		return DefaultTileSize
	}
	return s.TileSize
}

// TileRange fails for zooms outside [0, tile.MaxZoom], where tile coordinates
// no longer fit the pixel plane.
func (s ProjectionStrategy) TileRange(view Viewport, zoom int) (tile.Range, error) {
	if zoom < 0 || zoom > tile.MaxZoom {
		return tile.EmptyRange, fmt.Errorf("zoom %d out of range [0, %d]", zoom, tile.MaxZoom)
	}
	raw := view.Extent()
	if hasNaN(raw.Min) || hasNaN(raw.Max) {
		return tile.EmptyRange, fmt.Errorf("invalid viewport extent %v", raw)
	}

	tileSize := s.tileSize()
	extent := projection.WrapExtent(raw)
	nw := projection.ToPixel(extent.Max.Lat(), extent.Min.Lon(), zoom, tileSize)
	se := projection.ToPixel(extent.Min.Lat(), extent.Max.Lon(), zoom, tileSize)

	return tile.Range{
		MinX: nw.X / tileSize,
		MinY: nw.Y / tileSize,
		MaxX: se.X / tileSize,
		MaxY: se.Y / tileSize,
	}, nil
}

func (s ProjectionStrategy) TilePosition(view Viewport, p tile.Point) (Position, error) {
	if p.Zoom < 0 {
		return Position{}, fmt.Errorf("%w: %v", tile.ErrInvalidPoint, p)
	}

	tileSize := s.tileSize()
	zoom := view.Zoom()
	originX, originY := s.viewOrigin(view, zoom, tileSize)

	// Placement follows the live view zoom, so tiles of another zoom are scaled.
	x, y := projection.Project(projection.TileOrigin(p), zoom, tileSize)
	return Position{X: x - originX, Y: y - originY}, nil
}

// viewOrigin returns the world pixel of the viewport's top-left corner, measured
// in the world copy that contains the center.
func (s ProjectionStrategy) viewOrigin(view Viewport, zoom float64, tileSize int) (x, y float64) {
	center := view.Center()
	center[0] = projection.NormalizeLon(center.Lon())
	cx, cy := projection.Project(center, zoom, tileSize)

	width, height := view.Size()
	return cx - float64(width)/2, cy - float64(height)/2
}

func hasNaN(p orb.Point) bool {
	return math.IsNaN(p[0]) || math.IsNaN(p[1])
}
