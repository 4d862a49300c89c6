package loader

import "go.uber.org/zap"

// DefaultTileSize is the tile edge length in pixels used when none is configured.
const DefaultTileSize = 256

type config struct {
	TileSize    int
	ZoomOffset  int
	TileLoading bool
	Logger      *zap.Logger
}

type Option func(*config)

// WithTileSize sets the tile edge length in pixels. It applies to the default
// strategy and to a ProjectionStrategy with a zero TileSize; an explicit
// ProjectionStrategy.TileSize wins. Default: 256.
func WithTileSize(tileSize int) Option {
	return func(c *config) { c.TileSize = tileSize }
}

// WithZoomOffset is added to the rounded viewport zoom to obtain the tile zoom. Default: 0.
func WithZoomOffset(offset int) Option {
	return func(c *config) { c.ZoomOffset = offset }
}

// WithTileLoading controls whether the manager tracks tiles at all. When disabled,
// Attach only records the viewport and Update is a no-op. Default: enabled.
func WithTileLoading(enabled bool) Option {
	return func(c *config) { c.TileLoading = enabled }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.Logger = logger }
}

func newConfig(opts []Option) config {
	c := config{
		TileSize:    DefaultTileSize,
		TileLoading: true,
		Logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.TileSize <= 0 {
		c.TileSize = DefaultTileSize
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
