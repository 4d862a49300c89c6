package xyz

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-tileloader/tile"
)

// Reader implements tile.Reader and tile.Visitor for an XYZ directory.
type Reader struct {
	pattern *pattern
}

// NewReader creates a Reader for the given file pattern.
func NewReader(filePattern string) (*Reader, error) {
	p, err := parsePattern(filePattern)
	if err != nil {
		return nil, err
	}
	return &Reader{pattern: p}, nil
}

func (r *Reader) ReadTile(p tile.Point) ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %v", tile.ErrInvalidPoint, p)
	}
	tileData, err := os.ReadFile(r.pattern.path(p))
	if errors.Is(err, fs.ErrNotExist) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, err
	}
	return tileData, nil
}

// VisitTiles walks the pattern root in lexical order. Files that do not match
// the pattern are skipped.
func (r *Reader) VisitTiles(visitor func(tile.Point, []byte) error) error {
	return filepath.WalkDir(r.pattern.root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		p, ok := r.pattern.match(filePath)
		if !ok {
			return nil
		}

		tileData, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}
		return visitor(p, tileData)
	})
}
