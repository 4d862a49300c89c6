// Package view provides an in-memory map viewport for driving a loader.Manager
// without a real map widget: headless tools, tests and prefetchers.
package view

import (
	"github.com/eak1mov/go-tileloader/event"
	"github.com/eak1mov/go-tileloader/loader"
	"github.com/eak1mov/go-tileloader/projection"
	"github.com/paulmach/orb"
)

// pixelTileSize defines the pixel scale of the view: at zoom z the world is
// 2^z * 256 pixels wide, as in common web maps.
const pixelTileSize = 256

// Map is a Web-Mercator viewport with a center, a fractional zoom and a pixel
// size. Setters notify subscribers synchronously. Map implements loader.Viewport.
type Map struct {
	center orb.Point
	zoom   float64
	width  int
	height int

	events event.Emitter[struct{}]
}

func New(center orb.Point, zoom float64, width, height int) *Map {
	return &Map{
		center: center,
		zoom:   max(zoom, 0),
		width:  max(width, 0),
		height: max(height, 0),
	}
}

func (m *Map) Zoom() float64             { return m.zoom }
func (m *Map) Size() (width, height int) { return m.width, m.height }
func (m *Map) Center() orb.Point         { return m.center }

func (m *Map) Subscribe(kind event.Kind, fn func()) event.Handle {
	return m.events.Subscribe(kind, func(struct{}) { fn() })
}

func (m *Map) Unsubscribe(h event.Handle) {
	m.events.Unsubscribe(h)
}

// SetCenter moves the view. The longitude is kept as given, so panning across
// the antimeridian produces centers outside [-180, 180].
func (m *Map) SetCenter(center orb.Point) {
	if center == m.center {
		return
	}
	m.center = center
	m.events.Emit(loader.ViewCenterChanged, struct{}{})
}

func (m *Map) SetZoom(zoom float64) {
	zoom = max(zoom, 0)
	if zoom == m.zoom {
		return
	}
	m.zoom = zoom
	m.events.Emit(loader.ViewResolutionChanged, struct{}{})
}

func (m *Map) SetSize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height
	m.events.Emit(loader.ViewSizeChanged, struct{}{})
}

// PanBy moves the center by a pixel offset at the current zoom.
func (m *Map) PanBy(dx, dy float64) {
	cx, cy, shift := m.centerPixel()
	ll := projection.Unproject(cx+dx, cy+dy, m.zoom, pixelTileSize)
	ll[0] += shift
	ll[1] = projection.Clip(ll.Lat(), projection.South, projection.North)
	m.SetCenter(ll)
}

// Extent returns the geographic bounds of the view. Its longitudes follow the
// world copy of the center and may exceed [-180, 180].
func (m *Map) Extent() orb.Bound {
	cx, cy, shift := m.centerPixel()
	halfW, halfH := float64(m.width)/2, float64(m.height)/2

	nw := projection.Unproject(cx-halfW, cy-halfH, m.zoom, pixelTileSize)
	se := projection.Unproject(cx+halfW, cy+halfH, m.zoom, pixelTileSize)
	return orb.Bound{
		Min: orb.Point{nw.Lon() + shift, se.Lat()},
		Max: orb.Point{se.Lon() + shift, nw.Lat()},
	}
}

// PixelFromCoordinate converts a coordinate of the center's world copy to view pixels.
func (m *Map) PixelFromCoordinate(ll orb.Point) (x, y float64) {
	cx, cy, _ := m.centerPixel()
	px, py := projection.Project(ll, m.zoom, pixelTileSize)
	return px - cx + float64(m.width)/2, py - cy + float64(m.height)/2
}

// CoordinateFromPixel is the inverse of PixelFromCoordinate.
func (m *Map) CoordinateFromPixel(x, y float64) orb.Point {
	cx, cy, _ := m.centerPixel()
	return projection.Unproject(cx+x-float64(m.width)/2, cy+y-float64(m.height)/2, m.zoom, pixelTileSize)
}

// centerPixel returns the world pixel of the center within the primary world
// copy and the longitude shift between that copy and the center's own.
func (m *Map) centerPixel() (x, y, shift float64) {
	lon := projection.NormalizeLon(m.center.Lon())
	x, y = projection.Project(orb.Point{lon, m.center.Lat()}, m.zoom, pixelTileSize)
	return x, y, m.center.Lon() - lon
}
