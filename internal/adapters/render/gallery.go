package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	// decoders used by image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/pkg/fsutil"
	"github.com/okian/labsite/pkg/logger"
)

// GalleryScale shrinks gallery images for display.
const GalleryScale = 0.7

// GalleryImagePath is the site-relative directory of an event's images.
func GalleryImagePath(eventID string) string {
	return path.Join("website_files/images/gallery", eventID)
}

// Gallery copies event images into the site and renders Gallery.html.
// Problems with a single event or image are logged and skipped.
func (e *Engine) Gallery(ctx context.Context, c *Content) error {
	e.log.Info(ctx, "rendering gallery page")

	events := make([]model.GalleryEvent, 0, len(c.Gallery))
	for _, ev := range c.Gallery {
		processed, err := e.prepareEvent(ctx, ev)
		if err != nil {
			e.log.Error(ctx, "failed to process gallery event", logger.String("event", ev.ID), logger.Error(err))
			continue
		}
		events = append(events, processed)
	}

	if err := e.Render(ctx, "gallery", "gallery", "Gallery.html", c.general(), "Gallery", GalleryData{Events: events}); err != nil {
		return err
	}
	e.log.Info(ctx, "rendered gallery page", logger.Int("events", len(events)))
	return nil
}

func (e *Engine) prepareEvent(ctx context.Context, ev model.GalleryEvent) (model.GalleryEvent, error) {
	src := filepath.Join(ev.Dir, "media", "images")
	dst := filepath.Join(e.outputDir, filepath.FromSlash(GalleryImagePath(ev.ID)), "media", "images")
	if fsutil.Exists(src) {
		if _, err := fsutil.CopyTree(ctx, src, dst); err != nil {
			return ev, err
		}
	} else {
		e.log.Warn(ctx, "no images directory for gallery event", logger.String("event", ev.ID), logger.String("dir", src))
	}

	images := make([]model.GalleryImage, 0, len(ev.Images))
	for _, img := range ev.Images {
		file := filepath.Join(ev.Dir, filepath.FromSlash(img.Path))
		if !fsutil.Exists(file) {
			e.log.Warn(ctx, "gallery image not found", logger.String("event", ev.ID), logger.String("image", file))
			continue
		}
		w, h, err := imageSize(file)
		switch {
		case errors.Is(err, ErrNotImage):
			e.log.Warn(ctx, "skipping gallery file that is not an image", logger.String("event", ev.ID), logger.String("file", file), logger.Error(err))
			continue
		case err != nil:
			// keep the image, the page falls back to its natural size
			e.log.Error(ctx, "failed to read image size", logger.String("image", file), logger.Error(err))
		default:
			img.ScaledWidth = int(math.Round(float64(w) * GalleryScale))
			img.ScaledHeight = int(math.Round(float64(h) * GalleryScale))
		}
		images = append(images, img)
	}
	ev.Images = images
	return ev, nil
}

// imageSize sniffs the file type and decodes only the image header.
func imageSize(file string) (int, int, error) {
	mt, err := mimetype.DetectFile(file)
	if err != nil {
		return 0, 0, fmt.Errorf("detect type: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}
	f, err := os.Open(file)
	if err != nil {
		return 0, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s header: %w", mt.String(), err)
	}
	return cfg.Width, cfg.Height, nil
}
