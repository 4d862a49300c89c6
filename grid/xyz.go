// Package grid implements the XYZ (slippy map) tile grid on top of orb/maptile.
package grid

import (
	"fmt"

	"github.com/eak1mov/go-tileloader/projection"
	"github.com/eak1mov/go-tileloader/tile"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoom is the deepest zoom level whose tile coordinates fit maptile's uint32 math.
const MaxZoom = tile.MaxZoom

// XYZ is the Web-Mercator XYZ tile grid: tile (0, 0) is the north-west corner
// of the world and rows grow southwards.
type XYZ struct{}

// TileRange returns the tiles intersecting extent at zoom. The extent is wrapped
// onto the primary world copy first.
func (XYZ) TileRange(extent orb.Bound, zoom int) (tile.Range, error) {
	if zoom < 0 || zoom > MaxZoom {
		return tile.EmptyRange, fmt.Errorf("zoom %d out of range [0, %d]", zoom, MaxZoom)
	}

	b := projection.WrapExtent(extent)
	z := maptile.Zoom(zoom)
	nw := maptile.Fraction(orb.Point{b.Min.Lon(), b.Max.Lat()}, z)
	se := maptile.Fraction(orb.Point{b.Max.Lon(), b.Min.Lat()}, z)

	r := tile.Range{
		MinX: int(nw[0]),
		MinY: int(nw[1]),
		MaxX: int(se[0]),
		MaxY: int(se[1]),
	}
	return r.Clamp(zoom), nil
}

// TileExtent returns the geographic bounds of a tile.
func (XYZ) TileExtent(p tile.Point) (orb.Bound, error) {
	if !p.Valid() || p.Zoom > MaxZoom {
		return orb.Bound{}, fmt.Errorf("%w: %v", tile.ErrInvalidPoint, p)
	}
	t := maptile.New(uint32(p.X), uint32(p.Y), maptile.Zoom(p.Zoom))
	return t.Bound(), nil
}
