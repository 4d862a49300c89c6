package tile

import (
	"fmt"
	"math/bits"

	"github.com/google/hilbert"
)

// Code returns the PMTiles tile code of p: the position of the tile on the Hilbert
// curve of its zoom level, offset by the number of tiles on all lower zoom levels.
// Distinct valid points never share a code.
func Code(p Point) (uint64, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPoint, p)
	}
	h, err := hilbert.NewHilbert(1 << p.Zoom)
	if err != nil {
		return 0, err
	}
	tileCode, err := h.MapInverse(p.X, p.Y)
	if err != nil {
		return 0, err
	}

	tilesCount := (1<<(p.Zoom*2) - 1) / 3
	return uint64(tileCode + tilesCount), nil
}

// FromCode is the inverse of Code.
func FromCode(tileCode uint64) Point {
	z := (bits.Len64(3*tileCode+1) - 1) / 2
	tilesCount := (1<<(z*2) - 1) / 3

	h, _ := hilbert.NewHilbert(1 << z)
	x, y, _ := h.Map(int(tileCode) - tilesCount)

	return Point{X: x, Y: y, Zoom: z}
}
