package mb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/eak1mov/go-tileloader/tile"
	"go.uber.org/zap"
)

// Writer implements tile.Writer for an MBTiles file.
type Writer struct {
	db     *sql.DB
	stmt   *sql.Stmt
	logger *zap.Logger
	count  int
}

// NewWriter creates a new MBTiles file and prepares it for writing tiles.
func NewWriter(filePath string, opts ...Option) (*Writer, error) {
	c := newConfig(filePath, opts)

	var err error
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(`
		CREATE TABLE metadata (name TEXT, value TEXT);
		CREATE TABLE tiles (
			zoom_level INTEGER,
			tile_column INTEGER,
			tile_row INTEGER,
			tile_data BLOB
		);
	`)
	if err != nil {
		return nil, err
	}

	for k, v := range c.Metadata {
		_, err = db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v)
		if err != nil {
			return nil, err
		}
	}

	stmt, err := db.Prepare("INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}

	return &Writer{db: db, stmt: stmt, logger: c.Logger}, nil
}

func (w *Writer) Close() error {
	return errors.Join(w.stmt.Close(), w.db.Close())
}

func (w *Writer) WriteTile(p tile.Point, tileData []byte) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %v", tile.ErrInvalidPoint, p)
	}
	if _, err := w.stmt.Exec(p.Zoom, p.X, flipY(p.Y, p.Zoom), tileData); err != nil {
		return fmt.Errorf("write tile %v: %w", p, err)
	}
	w.count++
	return nil
}

func (w *Writer) Finalize() error {
	w.logger.Debug("creating index", zap.Int("tiles", w.count))
	_, err := w.db.Exec("CREATE UNIQUE INDEX tile_index ON tiles (zoom_level, tile_column, tile_row)")
	if err != nil {
		return err
	}
	w.logger.Debug("tileset finalized")
	return nil
}
