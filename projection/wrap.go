package projection

import (
	"math"

	"github.com/paulmach/orb"
)

// NormalizeLon maps lon into [-180, 180] by whole turns, giving the same result
// as repeatedly adding or subtracting 360. Values already in range are returned
// unchanged.
func NormalizeLon(lon float64) float64 {
	switch {
	case math.IsInf(lon, 0):
		return Clip(lon, West, East)
	case lon > East:
		return lon - 360*math.Ceil((lon-East)/360)
	case lon < West:
		return lon + 360*math.Ceil((West-lon)/360)
	}
	return lon
}

// WrapExtent brings a viewport extent onto the primary world copy.
//
// Extents at least 360 degrees wide cover the whole world and are clamped to the
// earth bounds. Narrower extents crossing the antimeridian are shifted by whole
// turns so that their center lies in [-180, 180], then clipped. The part beyond
// the seam belongs to the neighbouring world copy and is dropped, so a viewport
// straddling the antimeridian gets no tiles for that part: an extent of
// 134.9..224.9 becomes 134.9..180 and the tiles east of 180 are never requested.
// An extent with east < west is read as crossing the antimeridian eastwards.
func WrapExtent(b orb.Bound) orb.Bound {
	west, east := b.Min.Lon(), b.Max.Lon()
	if east < west {
		east += 360
	}

	if east-west >= 360 {
		west, east = West, East
	} else if west < West || east > East {
		center := (west + east) / 2
		shift := NormalizeLon(center) - center
		west = Clip(west+shift, West, East)
		east = Clip(east+shift, West, East)
	}

	return orb.Bound{
		Min: orb.Point{west, Clip(b.Min.Lat(), South, North)},
		Max: orb.Point{east, Clip(b.Max.Lat(), South, North)},
	}
}
