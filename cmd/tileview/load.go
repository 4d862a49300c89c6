package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/eak1mov/go-tileloader/fetch"
	"github.com/eak1mov/go-tileloader/internal/config"
	"github.com/eak1mov/go-tileloader/loader"
	"github.com/google/subcommands"
	"github.com/paulmach/orb"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type loadCmd struct {
	cfg         *config.Config
	view        viewFlags
	inputFormat string
	inputPath   string
	centers     string
	workers     int
	cacheTiles  int
	timeout     time.Duration
}

func (c *loadCmd) Name() string     { return "load" }
func (c *loadCmd) Synopsis() string { return "load the tiles of a viewport from a tileset" }
func (c *loadCmd) Usage() string {
	return "tileview load -i <path> [-if <format>] [-lon <deg> -lat <deg> -zoom <z>] [-path <lon,lat;...>]\n"
}
func (c *loadCmd) SetFlags(f *flag.FlagSet) {
	c.view.register(f, c.cfg)
	f.StringVar(&c.inputPath, "i", "", "Input path (mbtiles file or xyz pattern)")
	f.StringVar(&c.inputFormat, "if", "", "Input format (mbtiles, xyz)")
	f.StringVar(&c.centers, "path", "", "Centers to pan through after the initial view, as lon,lat;lon,lat")
	f.IntVar(&c.workers, "workers", c.cfg.Workers, "Number of concurrent tile reads")
	f.IntVar(&c.cacheTiles, "cache", c.cfg.CacheTiles, "Number of tiles kept in the memory cache")
	f.DurationVar(&c.timeout, "timeout", time.Minute, "Maximum time to wait for one view to load")
}

func (c *loadCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	log := args[0].(*zap.Logger)
	if c.inputPath == "" {
		log.Error("input path is required")
		return subcommands.ExitUsageError
	}
	centers, err := parseCenters(c.centers)
	if err != nil {
		log.Error("invalid path", zap.Error(err))
		return subcommands.ExitUsageError
	}

	src, err := openSource(c.inputFormat, c.inputPath, log)
	if err != nil {
		log.Error("failed to open tileset", zap.String("path", c.inputPath), zap.Error(err))
		return subcommands.ExitFailure
	}
	defer closeSource(src)

	v := c.view.newView()
	m := c.view.newManager(log)
	f := fetch.New(src,
		fetch.WithWorkers(c.workers),
		fetch.WithCache(fetch.NewCache(c.cacheTiles)),
		fetch.WithLogger(log),
	)
	f.Attach(m)
	defer f.Detach()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- f.Run(runCtx) }()
	defer func() {
		cancel()
		<-done
	}()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("tiles"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
	)
	defer func() {
		bar.Finish()
		fmt.Println()
	}()

	steps := append([]orb.Point{v.Center()}, centers...)
	for i, center := range steps {
		start := time.Now()
		if i == 0 {
			m.Attach(v)
		} else {
			v.SetCenter(center)
		}
		loaded, err := c.wait(ctx, f, m, bar)
		if err != nil {
			log.Error("view did not finish loading",
				zap.Int("step", i),
				zap.Int("pending", m.Pending()),
				zap.Error(err),
			)
			return subcommands.ExitFailure
		}
		log.Info("view loaded",
			zap.Int("step", i),
			zap.Float64("lon", center.Lon()),
			zap.Float64("lat", center.Lat()),
			zap.Int("zoom", m.Zoom()),
			zap.Int("loaded", loaded),
			zap.Int("resident", m.Resident()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return subcommands.ExitSuccess
}

// wait delivers fetch results to m until nothing is pending.
func (c *loadCmd) wait(ctx context.Context, f *fetch.Fetcher, m *loader.Manager, bar *progressbar.ProgressBar) (int, error) {
	timeout := time.NewTimer(c.timeout)
	defer timeout.Stop()

	loaded := 0
	for m.Pending() > 0 {
		select {
		case <-f.Ready():
			n := f.Deliver(m)
			loaded += n
			bar.Add(n)
		case <-timeout.C:
			return loaded, fmt.Errorf("timed out after %v", c.timeout)
		case <-ctx.Done():
			return loaded, ctx.Err()
		}
	}
	return loaded, nil
}
