// Package projection implements the spherical Web-Mercator math used to place
// geographic coordinates on the square pixel plane of a zoom level.
//
// Geographic points are orb.Point values, ordered [longitude, latitude].
package projection

import (
	"math"

	"github.com/eak1mov/go-tileloader/tile"
	"github.com/paulmach/orb"
)

// Latitude and longitude limits of the Web-Mercator plane.
const (
	North = 85.05112878
	South = -85.05112878
	West  = -180.0
	East  = 180.0
)

// EarthBounds is the geographic extent representable in Web-Mercator.
var EarthBounds = orb.Bound{
	Min: orb.Point{West, South},
	Max: orb.Point{East, North},
}

// Pixel is an integer position on the world bitmap of a zoom level.
type Pixel struct {
	X    int
	Y    int
	Zoom int
}

func Clip(v, minValue, maxValue float64) float64 {
	return math.Min(math.Max(v, minValue), maxValue)
}

// MapSize returns the width (and height) in pixels of the world bitmap at zoom.
func MapSize(zoom float64, tileSize int) float64 {
	return math.Pow(2, zoom) * float64(tileSize)
}

// fractions maps a clamped geographic point to [0, 1] plane fractions.
func fractions(lat, lon float64) (x, y float64) {
	lat = Clip(lat, South, North)
	lon = Clip(lon, West, East)

	x = (lon + 180) / 360
	sinLat := math.Sin(lat * math.Pi / 180)
	y = 0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)
	return x, y
}

// ToPixel converts a geographic coordinate to the pixel containing it at the
// given zoom. Inputs outside the Mercator band are clamped, never rejected.
func ToPixel(lat, lon float64, zoom, tileSize int) Pixel {
	x, y := fractions(lat, lon)
	mapSize := MapSize(float64(zoom), tileSize)

	return Pixel{
		X:    int(math.Floor(Clip(x*mapSize, 0, mapSize-1))),
		Y:    int(math.Floor(Clip(y*mapSize, 0, mapSize-1))),
		Zoom: zoom,
	}
}

// Project converts a geographic coordinate to fractional world pixels.
// Unlike ToPixel it accepts fractional zoom and neither floors nor clamps the
// result to the world bitmap (latitude and longitude are still clamped).
func Project(ll orb.Point, zoom float64, tileSize int) (x, y float64) {
	fx, fy := fractions(ll.Lat(), ll.Lon())
	mapSize := MapSize(zoom, tileSize)
	return fx * mapSize, fy * mapSize
}

// Unproject is the inverse of Project. Longitudes outside the world bitmap are
// returned unwrapped.
func Unproject(x, y, zoom float64, tileSize int) orb.Point {
	mapSize := MapSize(zoom, tileSize)
	lon := x/mapSize*360 - 180
	n := math.Pi * (1 - 2*y/mapSize)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi
	return orb.Point{lon, lat}
}

// TileOrigin returns the geographic north-west corner of a tile.
func TileOrigin(p tile.Point) orb.Point {
	return Unproject(float64(p.X), float64(p.Y), float64(p.Zoom), 1)
}
