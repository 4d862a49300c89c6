// Package fetch loads the tiles requested by a loader.Manager from a tile store.
//
// Reads run on a bounded pool of goroutines. Their results are queued and applied
// to the manager by Deliver, which must be called on the goroutine that owns the
// manager:
//
//	f := fetch.New(reader)
//	f.Attach(m)
//	go f.Run(ctx)
//	for m.Pending() > 0 {
//		<-f.Ready()
//		f.Deliver(m)
//	}
package fetch

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/eak1mov/go-tileloader/event"
	"github.com/eak1mov/go-tileloader/loader"
	"github.com/eak1mov/go-tileloader/tile"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers   = 4
	DefaultCacheSize = 1024
)

type config struct {
	Workers int
	Cache   *Cache
	Logger  *zap.Logger
}

type Option func(*config)

// WithWorkers sets the number of concurrent reads.
func WithWorkers(n int) Option {
	return func(c *config) { c.Workers = n }
}

// WithCache sets the payload cache, which may be shared between fetchers
// reading the same store.
func WithCache(cache *Cache) Option {
	return func(c *config) { c.Cache = cache }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.Logger = logger }
}

// Result is the outcome of one tile read.
type Result struct {
	Point tile.Point
	Data  []byte
	Err   error
}

// Fetcher reads tiles from a tile.Reader on behalf of a loader.Manager.
type Fetcher struct {
	reader  tile.Reader
	workers int
	cache   *Cache
	logger  *zap.Logger

	mu      sync.Mutex
	queue   []tile.Point
	claimed int
	results []Result

	wake  chan struct{}
	ready chan struct{}

	manager *loader.Manager
	subs    []event.Handle
}

func New(reader tile.Reader, opts ...Option) *Fetcher {
	c := config{
		Workers: DefaultWorkers,
		Logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.Cache == nil {
		c.Cache = NewCache(DefaultCacheSize)
	}
	return &Fetcher{
		reader:  reader,
		workers: max(c.Workers, 1),
		cache:   c.Cache,
		logger:  c.Logger,
		wake:    make(chan struct{}, 1),
		ready:   make(chan struct{}, 1),
	}
}

// Attach requests every tile m adds and drops queued requests for tiles m
// removes. A fetcher serves one manager at a time.
func (f *Fetcher) Attach(m *loader.Manager) {
	f.Detach()
	f.manager = m
	f.subs = []event.Handle{
		m.Subscribe(loader.TileAdded, func(e loader.Event) { f.Request(e.Point) }),
		m.Subscribe(loader.TileRemoved, func(e loader.Event) { f.Cancel(e.Point) }),
	}
	f.logger.Debug("fetcher attached", zap.String("loader_id", m.ID()))
}

func (f *Fetcher) Detach() {
	if f.manager == nil {
		return
	}
	for _, h := range f.subs {
		f.manager.Unsubscribe(h)
	}
	f.subs = nil
	f.manager = nil
}

// Request schedules a read of p. Cached tiles complete without a read.
func (f *Fetcher) Request(p tile.Point) {
	if code, err := tile.Code(p); err == nil {
		if data, ok := f.cache.Get(code); ok {
			f.push(Result{Point: p, Data: data})
			return
		}
	}

	f.mu.Lock()
	f.queue = append(f.queue, p)
	f.mu.Unlock()
	signal(f.wake)
}

// Cancel drops p from the queue if its read has not started. A read already in
// flight is not interrupted: if p is requested again meanwhile it is read a
// second time, and whichever result arrives first completes the new request.
func (f *Fetcher) Cancel(p tile.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := slices.Index(f.queue, p); i >= 0 {
		f.queue = slices.Delete(f.queue, i, i+1)
	}
}

// Queued returns the number of requests waiting for a worker.
func (f *Fetcher) Queued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Ready is signalled whenever results are available for Deliver.
func (f *Fetcher) Ready() <-chan struct{} {
	return f.ready
}

// Run dispatches queued requests in request order until ctx is done, then
// waits for in-flight reads.
func (f *Fetcher) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(f.workers)
	for {
		f.dispatch(&g)
		select {
		case <-ctx.Done():
			return g.Wait()
		case <-f.wake:
		}
	}
}

// Deliver reports every available result to m and returns the number of tiles
// completed. Tiles whose read failed complete with a nil payload. Results for
// tiles m no longer waits for are dropped.
func (f *Fetcher) Deliver(m *loader.Manager) int {
	f.mu.Lock()
	results := f.results
	f.results = nil
	f.mu.Unlock()

	delivered := 0
	for _, r := range results {
		var payload any
		if r.Err != nil {
			f.logger.Warn("failed to read tile", zap.Stringer("tile", r.Point), zap.Error(r.Err))
		} else {
			payload = r.Data
		}

		err := m.TileLoaded(r.Point, payload)
		switch {
		case errors.Is(err, loader.ErrNotPending):
			f.logger.Debug("dropping result of evicted tile", zap.Stringer("tile", r.Point))
		case err != nil:
			f.logger.Warn("failed to deliver tile", zap.Stringer("tile", r.Point), zap.Error(err))
		default:
			delivered++
		}
	}
	return delivered
}

// dispatch starts one worker per unclaimed request. Each worker takes the
// request at the head of the queue when it starts, so cancellations made while
// it waits for a free slot are honoured.
func (f *Fetcher) dispatch(g *errgroup.Group) {
	for {
		f.mu.Lock()
		if len(f.queue) <= f.claimed {
			f.mu.Unlock()
			return
		}
		f.claimed++
		f.mu.Unlock()

		g.Go(func() error {
			f.work()
			return nil
		})
	}
}

func (f *Fetcher) work() {
	f.mu.Lock()
	f.claimed--
	if len(f.queue) == 0 {
		f.mu.Unlock()
		return
	}
	p := f.queue[0]
	f.queue = f.queue[1:]
	f.mu.Unlock()

	data, err := f.reader.ReadTile(p)
	if err == nil {
		if code, codeErr := tile.Code(p); codeErr == nil {
			f.cache.Set(code, data)
		}
	}
	f.push(Result{Point: p, Data: data, Err: err})
}

func (f *Fetcher) push(r Result) {
	f.mu.Lock()
	f.results = append(f.results, r)
	f.mu.Unlock()
	signal(f.ready)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
