package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/eak1mov/go-tileloader/internal/config"
	"github.com/eak1mov/go-tileloader/loader"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type planCmd struct {
	cfg     *config.Config
	view    viewFlags
	centers string
	out     io.Writer
}

func (c *planCmd) Name() string     { return "plan" }
func (c *planCmd) Synopsis() string { return "print the tiles a viewport requests and evicts" }
func (c *planCmd) Usage() string {
	return "tileview plan [-lon <deg> -lat <deg> -zoom <z> -width <px> -height <px>] [-path <lon,lat;...>]\n"
}
func (c *planCmd) SetFlags(f *flag.FlagSet) {
	c.view.register(f, c.cfg)
	f.StringVar(&c.centers, "path", "", "Centers to pan through after the initial view, as lon,lat;lon,lat")
}

func (c *planCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	log := args[0].(*zap.Logger)
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	centers, err := parseCenters(c.centers)
	if err != nil {
		log.Error("invalid path", zap.Error(err))
		return subcommands.ExitUsageError
	}

	v := c.view.newView()
	m := c.view.newManager(log)

	// Every tile is reported loaded right away, so each step plans from a
	// settled registry.
	var added []loader.Event
	m.Subscribe(loader.TileAdded, func(e loader.Event) {
		added = append(added, e)
		pos, err := m.TilePosition(e.Point)
		if err != nil {
			log.Warn("failed to place tile", zap.Stringer("tile", e.Point), zap.Error(err))
		}
		fmt.Fprintf(out, "add\t%v\t%d,%d\n", e.Point, int(math.Round(pos.X)), int(math.Round(pos.Y)))
	})
	m.Subscribe(loader.TileRemoved, func(e loader.Event) {
		fmt.Fprintf(out, "remove\t%v\n", e.Point)
	})
	m.Subscribe(loader.TilesLoading, func(loader.Event) {
		for _, e := range added {
			if err := m.TileLoaded(e.Point, nil); err != nil {
				log.Warn("failed to complete tile", zap.Stringer("tile", e.Point), zap.Error(err))
			}
		}
		added = nil
	})

	fmt.Fprintf(out, "view\t%.6f,%.6f\tzoom %v\n", v.Center().Lon(), v.Center().Lat(), v.Zoom())
	m.Attach(v)
	for _, center := range centers {
		fmt.Fprintf(out, "view\t%.6f,%.6f\tzoom %v\n", center.Lon(), center.Lat(), v.Zoom())
		v.SetCenter(center)
	}

	log.Info("plan finished", zap.String("loader_id", m.ID()), zap.Int("resident", m.Resident()))
	return subcommands.ExitSuccess
}
