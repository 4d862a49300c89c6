// Package tile provides common tile types and tile store interfaces.
package tile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidKey   = errors.New("tileloader: invalid tile key")
	ErrInvalidPoint = errors.New("tileloader: invalid tile point")
)

// MaxZoom is the deepest zoom level whose tile coordinates fit in 32 bits.
const MaxZoom = 31

// Point identifies a single tile in the XYZ scheme (Tiled web map) at a zoom level.
type Point struct {
	X    int
	Y    int
	Zoom int
}

// Valid reports whether the point addresses an existing tile of its zoom level.
func (p Point) Valid() bool {
	return p.Zoom >= 0 && p.Zoom <= MaxZoom &&
		p.X >= 0 && p.X < (1<<p.Zoom) &&
		p.Y >= 0 && p.Y < (1<<p.Zoom)
}

func (p Point) String() string {
	return fmt.Sprintf("%d/%d/%d", p.Zoom, p.X, p.Y)
}

// Key is the registry index of a tile, formatted as "x:y:zoom".
type Key string

func (p Point) Key() Key {
	return Key(strconv.Itoa(p.X) + ":" + strconv.Itoa(p.Y) + ":" + strconv.Itoa(p.Zoom))
}

// ParseKey decodes a key produced by Point.Key.
func ParseKey(k Key) (Point, error) {
	parts := strings.Split(string(k), ":")
	if len(parts) != 3 {
		return Point{}, fmt.Errorf("%w: %q", ErrInvalidKey, k)
	}
	var coords [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return Point{}, fmt.Errorf("%w: %q: %w", ErrInvalidKey, k, err)
		}
		coords[i] = v
	}
	return Point{X: coords[0], Y: coords[1], Zoom: coords[2]}, nil
}

// Reader defines an interface for reading tiles from a tileset.
type Reader interface {
	// ReadTile reads a single tile from the tileset.
	// If the tile does not exist, it returns an empty slice with no error.
	ReadTile(p Point) ([]byte, error)
}

// Writer defines an interface for writing tiles to a tileset.
type Writer interface {
	// WriteTile writes a single tile to the tileset.
	WriteTile(p Point, tileData []byte) error

	// Finalize completes the writing process: flushes buffers, writes indices.
	// It must be called before closing the Writer.
	Finalize() error
}

type Visitor interface {
	// VisitTiles visits all tiles in the tileset, calling the visitor for each.
	// Order of tiles is implementation-defined.
	VisitTiles(visitor func(Point, []byte) error) error
}
