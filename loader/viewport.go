package loader

import (
	"github.com/eak1mov/go-tileloader/event"
	"github.com/paulmach/orb"
)

// Viewport notifications the manager subscribes to.
const (
	ViewCenterChanged     event.Kind = "change:center"
	ViewResolutionChanged event.Kind = "change:resolution"
	ViewSizeChanged       event.Kind = "change:size"
)

// Viewport is the host map view the manager tracks tiles for.
// The manager only reads it; all methods are called on the host goroutine.
type Viewport interface {
	// Zoom returns the current zoom level, possibly fractional.
	Zoom() float64

	// Size returns the viewport size in pixels.
	Size() (width, height int)

	// Center returns the geographic center of the view. Its longitude may lie
	// outside [-180, 180] after panning across the antimeridian.
	Center() orb.Point

	// Extent returns the geographic area covered by the view, in degrees.
	Extent() orb.Bound

	// PixelFromCoordinate converts a geographic coordinate to viewport pixels.
	PixelFromCoordinate(ll orb.Point) (x, y float64)

	// Subscribe registers fn for one of the View* notifications.
	Subscribe(kind event.Kind, fn func()) event.Handle
	Unsubscribe(h event.Handle)
}

// Position is the viewport pixel offset of a tile's top-left corner.
type Position struct {
	X float64
	Y float64
}
