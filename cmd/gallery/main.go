// Command gallery drives the gallery from the terminal: random images,
// gallery pages and the saved collection.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/timmy/mygallery/internal/app"
	"github.com/timmy/mygallery/internal/config"
	"github.com/timmy/mygallery/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cli.Command {
	h := &handler{out: out}

	return &cli.Command{
		Name:  "gallery",
		Usage: "Browse, save and manage gallery images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "Path to config file",
				Sources:   cli.EnvVars("CONFIG_PATH"),
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Before: h.setup,
		Commands: []*cli.Command{
			{
				Name:  "random",
				Usage: "Fetch a random image",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "save", Aliases: []string{"s"}, Usage: "Save the fetched image"},
				},
				Action: h.handleRandom,
			},
			{
				Name:  "gallery",
				Usage: "List gallery pages",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "pages", Aliases: []string{"p"}, Value: 1, Usage: "Number of pages to load"},
				},
				Action: h.handleGallery,
			},
			{
				Name:  "saved",
				Usage: "Manage the saved collection",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List saved images",
						Action: h.handleSavedList,
					},
					{
						Name:  "add",
						Usage: "Save an image by id and url",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "id", Required: true},
							&cli.StringFlag{Name: "url", Required: true},
							&cli.StringFlag{Name: "author"},
							&cli.IntFlag{Name: "width"},
							&cli.IntFlag{Name: "height"},
						},
						Action: h.handleSavedAdd,
					},
					{
						Name:      "delete",
						Usage:     "Delete a saved image",
						ArgsUsage: "<id>",
						Action:    h.handleSavedDelete,
					},
					{
						Name:   "clear",
						Usage:  "Delete every saved image",
						Action: h.handleSavedClear,
					},
				},
			},
			{
				Name:  "cache",
				Usage: "Manage downloaded files",
				Commands: []*cli.Command{
					{
						Name:   "purge",
						Usage:  "Remove every cached file without touching the collection",
						Action: h.handleCachePurge,
					},
				},
			},
		},
	}
}

// setup loads configuration and wires the application before any subcommand runs.
func (h *handler) setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(&logger.Config{
		Level:       c.String("log-level"),
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "mygallery-cli",
	})
	logger.SetDefaultLogger(log)

	a, err := app.Build(ctx, cfg, log, nil)
	if err != nil {
		return ctx, err
	}
	h.app = a

	if err := a.Effects.LoadSavedImages(ctx); err != nil {
		return ctx, err
	}
	return log.WithContext(ctx), nil
}
