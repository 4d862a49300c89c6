// Package mb reads and writes tiles and metadata in the MBTiles format.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package mb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/eak1mov/go-tileloader/tile"
	"go.uber.org/zap"
)

// Reader implements tile.Reader and tile.Visitor for an MBTiles file.
type Reader struct {
	db     *sql.DB
	stmt   *sql.Stmt
	logger *zap.Logger
}

// NewReader opens an MBTiles file read-only.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string, opts ...Option) (*Reader, error) {
	c := newConfig(filePath, opts)

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?")
	if err != nil {
		db.Close()
		return nil, err
	}

	c.Logger.Debug("tileset opened")
	return &Reader{db: db, stmt: stmt, logger: c.Logger}, nil
}

func (r *Reader) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}

func (r *Reader) ReadMetadata() (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return metadata, nil
}

// ReadTile returns the data of the tile at p, or an empty slice if the tileset
// has no such tile. Safe for concurrent use.
func (r *Reader) ReadTile(p tile.Point) ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %v", tile.ErrInvalidPoint, p)
	}

	var tileData []byte
	if err := r.stmt.QueryRow(p.Zoom, p.X, flipY(p.Y, p.Zoom)).Scan(&tileData); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []byte{}, nil
		}
		return nil, fmt.Errorf("read tile %v: %w", p, err)
	}
	return tileData, nil
}

func (r *Reader) VisitTiles(visitor func(tile.Point, []byte) error) error {
	rows, err := r.db.Query("SELECT zoom_level, tile_column, tile_row, tile_data FROM tiles")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p tile.Point
		var tileData []byte
		if err := rows.Scan(&p.Zoom, &p.X, &p.Y, &tileData); err != nil {
			return err
		}
		p.Y = flipY(p.Y, p.Zoom)

		if !p.Valid() {
			r.logger.Warn("skipping tile with invalid coordinates", zap.Stringer("tile", p))
			continue
		}
		if err := visitor(p, tileData); err != nil {
			return err
		}
	}
	return rows.Err()
}
