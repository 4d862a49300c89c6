package fetch_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eak1mov/go-tileloader/fetch"
	"github.com/eak1mov/go-tileloader/loader"
	"github.com/eak1mov/go-tileloader/tile"
	"github.com/eak1mov/go-tileloader/view"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errBroken = errors.New("broken tile")

// memReader serves "z/x/y" as the data of every tile.
type memReader struct {
	broken  map[tile.Point]bool
	gate    chan struct{}
	started chan tile.Point
	delay   time.Duration

	mu    sync.Mutex
	reads []tile.Point

	active    atomic.Int32
	maxActive atomic.Int32
}

func (r *memReader) ReadTile(p tile.Point) ([]byte, error) {
	n := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		m := r.maxActive.Load()
		if n <= m || r.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	r.mu.Lock()
	r.reads = append(r.reads, p)
	r.mu.Unlock()

	if r.started != nil {
		r.started <- p
	}
	if r.gate != nil {
		<-r.gate
	}
	time.Sleep(r.delay)

	if r.broken[p] {
		return nil, errBroken
	}
	return []byte(p.String()), nil
}

func (r *memReader) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reads)
}

func run(t *testing.T, f *fetch.Fetcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func waitLoaded(t *testing.T, f *fetch.Fetcher, m *loader.Manager) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for m.Pending() > 0 {
		select {
		case <-f.Ready():
			f.Deliver(m)
		case <-timeout:
			t.Fatalf("timed out with %d tiles pending", m.Pending())
		}
	}
}

func TestFetcherLoadsVisibleTiles(t *testing.T) {
	reader := &memReader{}
	f := fetch.New(reader)
	m := loader.New(nil)
	f.Attach(m)
	run(t, f)

	loaded := 0
	m.Subscribe(loader.TilesLoaded, func(loader.Event) { loaded++ })
	m.Attach(view.New(orb.Point{0, 0}, 1, 512, 512))
	waitLoaded(t, f, m)

	require.Equal(t, 1, loaded)
	require.Equal(t, 4, m.Resident())
	for p, payload := range m.Tiles() {
		require.Equal(t, []byte(p.String()), payload, "payload of %v", p)
	}
}

func TestFetcherReadsInRequestOrder(t *testing.T) {
	reader := &memReader{}
	f := fetch.New(reader, fetch.WithWorkers(1))
	m := loader.New(nil)
	f.Attach(m)

	var added []tile.Point
	m.Subscribe(loader.TileAdded, func(e loader.Event) { added = append(added, e.Point) })
	m.Attach(view.New(orb.Point{0, 0}, 2, 1024, 1024))
	require.Len(t, added, 16)
	require.Equal(t, 16, f.Queued())

	run(t, f)
	waitLoaded(t, f, m)

	reader.mu.Lock()
	defer reader.mu.Unlock()
	require.Equal(t, added, reader.reads)
}

func TestFetcherServesReloadFromCache(t *testing.T) {
	reader := &memReader{}
	cache := fetch.NewCache(16)
	f := fetch.New(reader, fetch.WithCache(cache))
	m := loader.New(nil)
	f.Attach(m)
	run(t, f)

	m.Attach(view.New(orb.Point{0, 0}, 1, 512, 512))
	waitLoaded(t, f, m)
	require.Equal(t, 4, reader.readCount())
	require.Equal(t, 4, cache.Len())

	m.Reload()
	require.Equal(t, 4, m.Pending())
	waitLoaded(t, f, m)

	require.Equal(t, 4, reader.readCount(), "reloaded tiles should come from the cache")
	require.Equal(t, 4, m.Resident())
}

func TestFetcherFailedReadCompletesTile(t *testing.T) {
	broken := tile.Point{X: 1, Y: 0, Zoom: 1}
	reader := &memReader{broken: map[tile.Point]bool{broken: true}}
	core, logs := observer.New(zapcore.WarnLevel)
	f := fetch.New(reader, fetch.WithLogger(zap.New(core)))
	m := loader.New(nil)
	f.Attach(m)
	run(t, f)

	loaded := 0
	m.Subscribe(loader.TilesLoaded, func(loader.Event) { loaded++ })
	m.Attach(view.New(orb.Point{0, 0}, 1, 512, 512))
	waitLoaded(t, f, m)

	require.Equal(t, 1, loaded)
	payload, ok := m.Tile(broken)
	require.True(t, ok)
	require.Nil(t, payload)

	entries := logs.FilterMessage("failed to read tile").All()
	require.Len(t, entries, 1)
	require.Equal(t, broken.String(), entries[0].ContextMap()["tile"])
}

func TestFetcherDropsEvictedTiles(t *testing.T) {
	reader := &memReader{
		gate:    make(chan struct{}),
		started: make(chan tile.Point, 16),
	}
	f := fetch.New(reader, fetch.WithWorkers(1))
	m := loader.New(nil)
	f.Attach(m)
	run(t, f)

	m.Attach(view.New(orb.Point{0, 0}, 1, 512, 512))
	select {
	case <-reader.started:
	case <-time.After(5 * time.Second):
		t.Fatal("no read started")
	}

	m.Detach()
	require.Zero(t, f.Queued(), "queued requests of evicted tiles should be cancelled")

	close(reader.gate)
	select {
	case <-f.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight read never finished")
	}
	require.Zero(t, f.Deliver(m))
	require.Zero(t, m.Resident())
	require.Equal(t, 1, reader.readCount())
}

func TestFetcherRereadsTileEvictedMidRead(t *testing.T) {
	reader := &memReader{
		gate:    make(chan struct{}),
		started: make(chan tile.Point, 16),
	}
	f := fetch.New(reader, fetch.WithWorkers(1))
	m := loader.New(nil)
	f.Attach(m)
	run(t, f)

	m.Attach(view.New(orb.Point{0, 0}, 1, 512, 512))
	var first tile.Point
	select {
	case first = <-reader.started:
	case <-time.After(5 * time.Second):
		t.Fatal("no read started")
	}

	// Evict everything while the first read is blocked, then show the same tiles again.
	m.Detach()
	m.Attach(view.New(orb.Point{0, 0}, 1, 512, 512))
	require.Equal(t, 4, f.Queued(), "in-flight tile should be requested again")

	close(reader.gate)
	waitLoaded(t, f, m)

	require.Equal(t, 4, m.Resident())
	payload, ok := m.Tile(first)
	require.True(t, ok)
	require.Equal(t, []byte(first.String()), payload)

	require.Equal(t, 5, reader.readCount())
	reader.mu.Lock()
	defer reader.mu.Unlock()
	require.Equal(t, []tile.Point{first, first}, reader.reads[:2])
}

func TestFetcherWorkerLimit(t *testing.T) {
	reader := &memReader{delay: 5 * time.Millisecond}
	f := fetch.New(reader, fetch.WithWorkers(2), fetch.WithCache(fetch.NewCache(0)))
	m := loader.New(nil)
	f.Attach(m)
	run(t, f)

	m.Attach(view.New(orb.Point{0, 0}, 2, 1024, 1024))
	waitLoaded(t, f, m)

	require.Equal(t, 16, reader.readCount())
	require.LessOrEqual(t, reader.maxActive.Load(), int32(2))
}

func TestFetcherDetach(t *testing.T) {
	reader := &memReader{}
	f := fetch.New(reader)
	m := loader.New(nil)
	f.Attach(m)
	f.Detach()

	m.Attach(view.New(orb.Point{0, 0}, 1, 512, 512))
	require.Zero(t, f.Queued())
	require.Equal(t, 4, m.Pending())

	// Requests can still be made directly.
	for p := range (tile.Range{MaxX: 1, MaxY: 1}).Points(1) {
		f.Request(p)
	}
	require.Equal(t, 4, f.Queued())
}
