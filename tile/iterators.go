package tile

import (
	"errors"
	"iter"
)

var errVisitCancelled = errors.New("visit cancelled")

// IterTiles returns an iterator over all tiles in the tileset.
// It yields tile points and their data. Iteration panics on unrecoverable errors.
func IterTiles(r Visitor) iter.Seq2[Point, []byte] {
	return func(yield func(Point, []byte) bool) {
		err := r.VisitTiles(func(p Point, tileData []byte) error {
			if !yield(p, tileData) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}
