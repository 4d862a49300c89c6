package tile

import (
	"fmt"
	"iter"
)

// Range is an inclusive rectangle of tile coordinates.
// A range with MinX > MaxX or MinY > MaxY is empty.
type Range struct {
	MinX int
	MinY int
	MaxX int
	MaxY int
}

// EmptyRange contains no tiles.
var EmptyRange = Range{MinX: 0, MinY: 0, MaxX: -1, MaxY: -1}

func (r Range) Empty() bool {
	return r.MinX > r.MaxX || r.MinY > r.MaxY
}

// Len returns the number of tiles in the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}

func (r Range) Contains(x, y int) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Center returns the geometric center of the range in tile units.
func (r Range) Center() (x, y float64) {
	return float64(r.MinX+r.MaxX) / 2, float64(r.MinY+r.MaxY) / 2
}

// Clamp restricts the range to the tiles that exist at the given zoom level.
func (r Range) Clamp(zoom int) Range {
	maxTile := (1 << zoom) - 1
	return Range{
		MinX: max(r.MinX, 0),
		MinY: max(r.MinY, 0),
		MaxX: min(r.MaxX, maxTile),
		MaxY: min(r.MaxY, maxTile),
	}
}

func (r Range) String() string {
	return fmt.Sprintf("x[%d,%d] y[%d,%d]", r.MinX, r.MaxX, r.MinY, r.MaxY)
}

// Points returns an iterator over the tiles of the range at the given zoom,
// row by row from the north-west corner.
func (r Range) Points(zoom int) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for y := r.MinY; y <= r.MaxY; y++ {
			for x := r.MinX; x <= r.MaxX; x++ {
				if !yield(Point{X: x, Y: y, Zoom: zoom}) {
					return
				}
			}
		}
	}
}
