package mb

import "go.uber.org/zap"

type config struct {
	Metadata map[string]string
	Logger   *zap.Logger
}

type Option func(*config)

// WithMetadata sets the metadata rows written by NewWriter.
func WithMetadata(metadata map[string]string) Option {
	return func(c *config) { c.Metadata = metadata }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.Logger = logger }
}

func newConfig(path string, opts []Option) config {
	c := config{Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	c.Logger = c.Logger.With(zap.String("mbtiles", path))
	return c
}

// flipY converts a row between the XYZ and TMS schemes. The conversion is its
// own inverse.
func flipY(y, zoom int) int {
	return (1 << zoom) - 1 - y
}
