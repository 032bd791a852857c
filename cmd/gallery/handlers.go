package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/timmy/mygallery/internal/app"
	"github.com/timmy/mygallery/internal/domain"
	"github.com/timmy/mygallery/internal/state"
)

var errMissingID = errors.New("an image id is required")

// handler implements the subcommands on top of the wired application.
type handler struct {
	app *app.App
	out io.Writer
}

func (h *handler) printImage(img domain.Image) {
	saved := " "
	if img.IsSaved {
		saved = "*"
	}
	fmt.Fprintf(h.out, "%s %-6s %-24s %5dx%-5d %s\n", saved, img.ID, img.Author, img.Width, img.Height, img.URL)
	if img.LocalPath != "" {
		fmt.Fprintf(h.out, "         local: %s\n", img.LocalPath)
	}
}

// reportSave prints a saved record. A degraded save is printed with a
// warning and is not treated as a failure.
func (h *handler) reportSave(img domain.Image, err error) error {
	if err != nil && !(domain.IsDegraded(err) && img.ID != "") {
		return errors.New(domain.UserMessage(err))
	}
	fmt.Fprintln(h.out, "Saved:")
	h.printImage(img.WithSaved(true))
	if err != nil {
		fmt.Fprintf(h.out, "Warning: %s\n", domain.UserMessage(err))
	}
	return nil
}

func (h *handler) handleRandom(ctx context.Context, c *cli.Command) error {
	if c.Bool("save") {
		return h.reportSave(h.app.Effects.FetchAndSaveRandomImage(ctx))
	}

	if _, err := h.app.Effects.FetchRandomImage(ctx); err != nil {
		return errors.New(domain.UserMessage(err))
	}
	img, _ := state.RandomImage(h.app.Store.Snapshot())
	h.printImage(img)
	return nil
}

func (h *handler) handleGallery(ctx context.Context, c *cli.Command) error {
	pages := c.Int("pages")
	for i := 0; i < pages; i++ {
		if err := h.app.Effects.FetchGalleryNextPage(ctx); err != nil {
			return errors.New(domain.UserMessage(err))
		}
		if !h.app.Store.Snapshot().Gallery.HasMore {
			break
		}
	}

	snap := h.app.Store.Snapshot()
	images := state.GalleryImages(snap)
	for _, img := range images {
		h.printImage(img)
	}
	fmt.Fprintf(h.out, "%d images from %s (page size %d), more available: %t\n",
		len(images), h.app.Source.GetDisplayName(), h.app.Service.PageSize(), snap.Gallery.HasMore)
	return nil
}

func (h *handler) handleSavedList(ctx context.Context, c *cli.Command) error {
	images := state.SavedImages(h.app.Store.Snapshot())
	if len(images) == 0 {
		fmt.Fprintln(h.out, "No saved images")
		return nil
	}
	fmt.Fprintf(h.out, "Saved images (%d total):\n", len(images))
	for _, img := range images {
		h.printImage(img)
	}
	return nil
}

func (h *handler) handleSavedAdd(ctx context.Context, c *cli.Command) error {
	img := domain.Image{
		ID:     c.String("id"),
		URL:    c.String("url"),
		Author: c.String("author"),
		Width:  c.Int("width"),
		Height: c.Int("height"),
	}
	return h.reportSave(h.app.Effects.SaveImage(ctx, img))
}

func (h *handler) handleSavedDelete(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return errMissingID
	}
	if err := h.app.Effects.DeleteImage(ctx, id); err != nil {
		return errors.New(domain.UserMessage(err))
	}
	fmt.Fprintf(h.out, "Deleted %s\n", id)
	return nil
}

func (h *handler) handleSavedClear(ctx context.Context, c *cli.Command) error {
	if err := h.app.Effects.ClearAllImages(ctx); err != nil {
		return errors.New(domain.UserMessage(err))
	}
	fmt.Fprintln(h.out, "Cleared saved images")
	return nil
}

func (h *handler) handleCachePurge(ctx context.Context, c *cli.Command) error {
	if err := h.app.Cache.ClearAll(ctx); err != nil {
		return errors.New(domain.UserMessage(err))
	}
	fmt.Fprintln(h.out, "Cache purged")
	return nil
}
