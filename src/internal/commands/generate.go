package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ipfeeds/listgen/src/internal/config"
	"github.com/ipfeeds/listgen/src/internal/errors"
	"github.com/ipfeeds/listgen/src/internal/feeds"
	"github.com/ipfeeds/listgen/src/internal/log"
	"github.com/ipfeeds/listgen/src/internal/pipeline"
)

func CreateGenerateCommand() *GenerateCommand {
	gc := &GenerateCommand{
		fs: flag.NewFlagSet("generate", flag.ContinueOnError),
	}
	gc.fs.Usage = func() {
		fmt.Fprintf(gc.fs.Output(), "Usage: listgen generate [options] <config_file> <output_dir>\n")
		gc.fs.PrintDefaults()
	}
	gc.fs.StringVar(&gc.only, "list", "", "Generate only the list with this name")
	return gc
}

type GenerateCommand struct {
	fs        *flag.FlagSet
	ctx       *AppContext
	cfg       *config.Config
	outputDir string
	only      string
}

func (g *GenerateCommand) Name() string {
	return g.fs.Name()
}

func (g *GenerateCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}
	if g.fs.NArg() != 2 {
		g.fs.Usage()
		return errors.NewConfigError("generate expects <config_file> <output_dir>", nil)
	}

	cfg, err := loadAndValidateConfig(g.fs.Arg(0))
	if err != nil {
		return err
	}
	g.cfg = cfg

	if g.outputDir, err = filepath.Abs(g.fs.Arg(1)); err != nil {
		return errors.NewConfigError("failed to resolve output directory", err)
	}

	return nil
}

func (g *GenerateCommand) lists() ([]*config.ListSpec, error) {
	if g.only == "" {
		return g.cfg.Lists, nil
	}
	for _, l := range g.cfg.Lists {
		if l.Name == g.only {
			return []*config.ListSpec{l}, nil
		}
	}
	return nil, errors.NewConfigError(fmt.Sprintf("list %q is not defined in %s", g.only, g.cfg.GetConfigPath()), nil)
}

func (g *GenerateCommand) Run() error {
	lists, err := g.lists()
	if err != nil {
		return err
	}

	// No list can be written without the output directory.
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		ioErr := errors.NewIOError(fmt.Sprintf("failed to create output directory %s", g.outputDir), err)
		return errors.NewListFailedError(fmt.Sprintf("%d of %d list(s) failed", len(lists), len(lists)), ioErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := g.cfg.Settings
	fetcher := feeds.NewFetcher(feeds.Options{
		Timeout:   settings.FetchTimeout(),
		Retries:   settings.Retries(),
		UserAgent: settings.UserAgent,
	})

	log.Infof("Generating %d list(s) into %s", len(lists), g.outputDir)
	results := pipeline.NewRunner(fetcher, g.outputDir, settings).Run(ctx, lists)

	pipeline.WriteSummary(g.ctx.stdout(), results, pipeline.ColorMode(g.ctx.Color))

	if failed := pipeline.FailedCount(results); failed > 0 {
		return errors.NewListFailedError(fmt.Sprintf("%d of %d list(s) failed", failed, len(results)), nil)
	}
	return nil
}
