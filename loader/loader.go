// Package loader tracks which map tiles should be resident for a viewport.
//
// A Manager computes the tile range visible in its attached Viewport, requests
// missing tiles nearest to the view center first, evicts tiles that left the
// view and signals when every requested tile has been reported loaded. It does
// not fetch tile data: subscribers of TileAdded do, and report back through
// TileLoaded.
//
// A Manager is single-threaded. All methods, and the viewport notifications that
// drive it, must be called from the same goroutine.
package loader

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"

	"github.com/eak1mov/go-tileloader/event"
	"github.com/eak1mov/go-tileloader/tile"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotPending  = errors.New("tileloader: tile is not pending")
	ErrNotAttached = errors.New("tileloader: no viewport attached")
)

// Notifications emitted by a Manager.
const (
	// TileAdded carries the Point of a tile that should be loaded.
	TileAdded event.Kind = "tileAdded"
	// TileRemoved carries the Point and Payload of an evicted tile.
	// Payload is nil and Loaded is false for tiles evicted while pending.
	TileRemoved event.Kind = "tileRemoved"
	// TilesLoading follows the TileAdded notifications of one update.
	TilesLoading event.Kind = "tilesLoading"
	// TilesLoaded is emitted when no tile is pending any more.
	TilesLoaded event.Kind = "tilesLoaded"
)

type Event struct {
	Kind    event.Kind
	Point   tile.Point
	Payload any
	Loaded  bool
}

type Manager struct {
	id       string
	config   config
	strategy Strategy
	logger   *zap.Logger

	view     Viewport
	viewSubs []event.Handle

	resident     map[tile.Key]any
	pending      map[tile.Key]tile.Point
	pendingCount int

	events event.Emitter[Event]
}

// New creates a Manager with an empty registry. A nil strategy selects
// ProjectionStrategy with the configured tile size. A ProjectionStrategy
// without a tile size takes the configured one too.
func New(strategy Strategy, opts ...Option) *Manager {
	cfg := newConfig(opts)
	switch s := strategy.(type) {
	case nil:
		strategy = ProjectionStrategy{TileSize: cfg.TileSize}
	case ProjectionStrategy:
		if s.TileSize <= 0 {
			s.TileSize = cfg.TileSize
			strategy = s
		}
	}
	id := uuid.NewString()
	return &Manager{
		id:       id,
		config:   cfg,
		strategy: strategy,
		logger:   cfg.Logger.With(zap.String("loader_id", id)),
		resident: make(map[tile.Key]any),
		pending:  make(map[tile.Key]tile.Point),
	}
}

func (m *Manager) ID() string { return m.id }

// TileSize returns the tile edge length the manager places tiles with.
func (m *Manager) TileSize() int {
	if s, ok := m.strategy.(ProjectionStrategy); ok {
		return s.TileSize
	}
	return m.config.TileSize
}

// Subscribe registers fn for one of the manager notifications.
func (m *Manager) Subscribe(kind event.Kind, fn func(Event)) event.Handle {
	return m.events.Subscribe(kind, fn)
}

func (m *Manager) Unsubscribe(h event.Handle) {
	m.events.Unsubscribe(h)
}

// Attach starts tracking tiles for view, replacing any previously attached
// viewport, and runs one update.
func (m *Manager) Attach(view Viewport) {
	if m.view != nil {
		m.Detach()
	}
	m.view = view
	if !m.config.TileLoading {
		return
	}

	update := func() { m.Update() }
	for _, kind := range []event.Kind{ViewCenterChanged, ViewResolutionChanged, ViewSizeChanged} {
		m.viewSubs = append(m.viewSubs, view.Subscribe(kind, update))
	}
	m.logger.Debug("viewport attached")
	m.Update()
}

// Detach stops listening to the viewport and evicts every tile.
func (m *Manager) Detach() {
	if m.view == nil {
		return
	}
	for _, h := range m.viewSubs {
		m.view.Unsubscribe(h)
	}
	m.viewSubs = nil

	m.removeTiles()
	m.view = nil
	m.logger.Debug("viewport detached")
}

// Reload evicts every tile and requests the visible ones again. Use it when the
// tile source changed and loaded payloads are stale.
func (m *Manager) Reload() {
	m.removeTiles()
	m.Update()
}

// Zoom returns the tile zoom level derived from the attached viewport.
func (m *Manager) Zoom() int {
	if m.view == nil {
		return 0
	}
	return max(int(math.Round(m.view.Zoom()))+m.config.ZoomOffset, 0)
}

// Update brings the registry in line with the viewport: tiles of the visible
// range that are neither resident nor pending are requested, tiles outside of
// it are evicted.
func (m *Manager) Update() {
	if m.view == nil || !m.config.TileLoading {
		return
	}

	zoom := m.Zoom()
	tileRange, err := m.strategy.TileRange(m.view, zoom)
	if err != nil {
		m.logger.Warn("failed to compute tile range, update skipped", zap.Int("zoom", zoom), zap.Error(err))
		return
	}

	added := m.addTilesFromCenterOut(tileRange, zoom)
	removed := m.removeOtherTiles(tileRange, zoom)

	m.logger.Debug("tiles updated",
		zap.Int("zoom", zoom),
		zap.Stringer("range", tileRange),
		zap.Int("added", added),
		zap.Int("removed", removed),
		zap.Int("pending", m.pendingCount),
		zap.Int("resident", len(m.resident)),
	)
}

// TileLoaded records that the data of a pending tile is ready. Reporting a tile
// that is not pending, for example one evicted while its load was in flight,
// returns an error wrapping ErrNotPending and changes nothing.
func (m *Manager) TileLoaded(p tile.Point, payload any) error {
	k := p.Key()
	if _, ok := m.pending[k]; !ok {
		return fmt.Errorf("%w: %v", ErrNotPending, p)
	}

	delete(m.pending, k)
	m.pendingCount--
	m.resident[k] = payload

	if m.pendingCount == 0 {
		m.emit(Event{Kind: TilesLoaded})
	}
	return nil
}

// TilePosition returns the viewport pixel position of the tile's top-left corner.
// It reflects the live viewport state on every call.
func (m *Manager) TilePosition(p tile.Point) (Position, error) {
	if m.view == nil {
		return Position{}, ErrNotAttached
	}
	return m.strategy.TilePosition(m.view, p)
}

// Tile returns the payload of a resident tile.
func (m *Manager) Tile(p tile.Point) (any, bool) {
	payload, ok := m.resident[p.Key()]
	return payload, ok
}

func (m *Manager) IsPending(p tile.Point) bool {
	_, ok := m.pending[p.Key()]
	return ok
}

// Pending returns the number of tiles requested but not loaded yet.
func (m *Manager) Pending() int { return m.pendingCount }

// Resident returns the number of loaded tiles.
func (m *Manager) Resident() int { return len(m.resident) }

// Tiles returns an iterator over resident tiles and their payloads in key order.
func (m *Manager) Tiles() iter.Seq2[tile.Point, any] {
	return func(yield func(tile.Point, any) bool) {
		for _, k := range slices.Sorted(maps.Keys(m.resident)) {
			p, err := tile.ParseKey(k)
			if err != nil {
				continue
			}
			if !yield(p, m.resident[k]) {
				return
			}
		}
	}
}

func (m *Manager) addTilesFromCenterOut(tileRange tile.Range, zoom int) int {
	var queue []tile.Point
	for p := range tileRange.Points(zoom) {
		if m.tileShouldBeLoaded(p.Key()) {
			queue = append(queue, p)
		}
	}
	if len(queue) == 0 {
		return 0
	}

	cx, cy := tileRange.Center()
	distance := func(p tile.Point) float64 {
		dx, dy := float64(p.X)-cx, float64(p.Y)-cy
		return dx*dx + dy*dy
	}
	slices.SortStableFunc(queue, func(a, b tile.Point) int {
		return cmp.Compare(distance(a), distance(b))
	})

	for _, p := range queue {
		m.pending[p.Key()] = p
	}
	m.pendingCount += len(queue)

	for _, p := range queue {
		m.emit(Event{Kind: TileAdded, Point: p})
	}
	m.emit(Event{Kind: TilesLoading})
	return len(queue)
}

func (m *Manager) tileShouldBeLoaded(k tile.Key) bool {
	_, loaded := m.resident[k]
	_, loading := m.pending[k]
	return !loaded && !loading
}

func (m *Manager) removeOtherTiles(tileRange tile.Range, zoom int) int {
	before := m.pendingCount
	removed := 0
	for _, k := range m.keys() {
		p, err := tile.ParseKey(k)
		if err != nil {
			m.logger.Warn("skipping undecodable tile key", zap.String("key", string(k)), zap.Error(err))
			continue
		}
		if p.Zoom != zoom || !tileRange.Contains(p.X, p.Y) {
			m.removeTile(k, p)
			removed++
		}
	}
	m.settle(before)
	return removed
}

func (m *Manager) removeTiles() {
	before := m.pendingCount
	for _, k := range m.keys() {
		p, err := tile.ParseKey(k)
		if err != nil {
			m.logger.Warn("evicting undecodable tile key", zap.String("key", string(k)), zap.Error(err))
		}
		m.removeTile(k, p)
	}
	m.settle(before)
}

func (m *Manager) removeTile(k tile.Key, p tile.Point) {
	payload, loaded := m.resident[k]
	if _, loading := m.pending[k]; loading {
		m.pendingCount--
	}
	delete(m.resident, k)
	delete(m.pending, k)

	m.emit(Event{Kind: TileRemoved, Point: p, Payload: payload, Loaded: loaded})
}

// settle emits TilesLoaded when evictions, rather than loads, drained the
// pending set, so that every TilesLoading is eventually followed by TilesLoaded.
func (m *Manager) settle(pendingBefore int) {
	if pendingBefore > 0 && m.pendingCount == 0 {
		m.emit(Event{Kind: TilesLoaded})
	}
}

// keys returns resident and pending keys in a stable order.
func (m *Manager) keys() []tile.Key {
	keys := slices.Collect(maps.Keys(m.resident))
	keys = slices.AppendSeq(keys, maps.Keys(m.pending))
	slices.Sort(keys)
	return keys
}

func (m *Manager) emit(e Event) {
	m.events.Emit(e.Kind, e)
}
