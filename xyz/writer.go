package xyz

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-tileloader/tile"
)

// Writer implements tile.Writer for an XYZ directory.
type Writer struct {
	pattern *pattern
}

// NewWriter creates a Writer for the given file pattern. Directories are
// created on demand.
func NewWriter(filePattern string) (*Writer, error) {
	p, err := parsePattern(filePattern)
	if err != nil {
		return nil, err
	}
	return &Writer{pattern: p}, nil
}

func (w *Writer) WriteTile(p tile.Point, tileData []byte) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %v", tile.ErrInvalidPoint, p)
	}
	filePath := w.pattern.path(p)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, tileData, 0o644)
}

// Finalize is a no-op: every tile is written through immediately.
func (w *Writer) Finalize() error {
	return nil
}
