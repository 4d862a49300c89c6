package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/eak1mov/go-tileloader/mb"
	"github.com/eak1mov/go-tileloader/tile"
	"github.com/eak1mov/go-tileloader/xyz"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type convertCmd struct {
	inputFormat  string
	inputPath    string
	outputFormat string
	outputPath   string
}

func (c *convertCmd) Name() string     { return "convert" }
func (c *convertCmd) Synopsis() string { return "convert between tile storage formats" }
func (c *convertCmd) Usage() string {
	return "tileview convert -i <path> -o <path> [-if <format> | -of <format>]\n"
}
func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input path")
	f.StringVar(&c.inputFormat, "if", "", "Input format (mbtiles, xyz)")
	f.StringVar(&c.outputPath, "o", "", "Output path")
	f.StringVar(&c.outputFormat, "of", "", "Output format (mbtiles, xyz)")
}

type tileSink interface {
	tile.Writer
	Close() error
}

type nopCloser struct{ tile.Writer }

func (nopCloser) Close() error { return nil }

func (c *convertCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	log := args[0].(*zap.Logger)

	src, err := openSource(c.inputFormat, c.inputPath, log)
	if err != nil {
		log.Error("failed to open input", zap.String("path", c.inputPath), zap.Error(err))
		return subcommands.ExitFailure
	}
	defer closeSource(src)

	var metadata map[string]string
	if r, ok := src.(*mb.Reader); ok {
		if metadata, err = r.ReadMetadata(); err != nil {
			log.Error("failed to read metadata", zap.Error(err))
			return subcommands.ExitFailure
		}
	}

	var sink tileSink
	switch deduceFormat(c.outputFormat, c.outputPath) {
	case "mbtiles":
		sink, err = mb.NewWriter(c.outputPath, mb.WithMetadata(metadata), mb.WithLogger(log))
	case "xyz":
		var w *xyz.Writer
		w, err = xyz.NewWriter(c.outputPath)
		sink = nopCloser{w}
	default:
		err = fmt.Errorf("invalid output format: %q", c.outputFormat)
	}
	if err != nil {
		log.Error("failed to create output", zap.String("path", c.outputPath), zap.Error(err))
		return subcommands.ExitFailure
	}
	defer sink.Close()

	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	count := 0
	err = src.VisitTiles(func(p tile.Point, tileData []byte) error {
		count++
		bar.Add(1)
		return sink.WriteTile(p, tileData)
	})
	bar.Finish()
	fmt.Println()
	if err == nil {
		err = sink.Finalize()
	}
	if err != nil {
		log.Error("conversion failed", zap.Int("tiles", count), zap.Error(err))
		return subcommands.ExitFailure
	}

	log.Info("conversion finished", zap.Int("tiles", count))
	return subcommands.ExitSuccess
}
