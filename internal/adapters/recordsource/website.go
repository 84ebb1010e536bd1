package recordsource

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/pkg/fsutil"
	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
)

// Website holds the page configuration under website_data. The free-form
// sections are passed to templates as decoded JSON.
type Website struct {
	General       map[string]any
	Homepage      map[string]any
	Contact       map[string]any
	Research      map[string]any
	Support       map[string]any
	Opportunities map[string]any
	RoleHierarchy map[string]int
}

// LoadWebsite reads the website configuration. Every file is required.
func (s *Source) LoadWebsite(ctx context.Context) (*Website, error) {
	root := filepath.Join(s.dataDir, websiteDataDir)
	s.log.Info(ctx, "loading website configuration", logger.String("dir", root))
	if !fsutil.Exists(root) {
		return nil, fmt.Errorf("%w: %w: website data directory %s", ErrLoad, ErrMissingFile, root)
	}

	w := &Website{}
	files := []struct {
		name string
		dst  any
	}{
		{"general.json", &w.General},
		{"homepage.json", &w.Homepage},
		{"contact.json", &w.Contact},
		{"research_categories.json", &w.Research},
		{"support.json", &w.Support},
		{filepath.Join("content", "opportunities.json"), &w.Opportunities},
		{"role_hierarchy.json", &w.RoleHierarchy},
	}
	for _, f := range files {
		if err := readJSON(filepath.Join(root, f.name), f.dst); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
	}
	s.log.Info(ctx, "loaded website configuration", logger.Int("ranked_roles", len(w.RoleHierarchy)))
	return w, nil
}

// LoadGallery reads gallery events. The gallery is optional: a missing
// directory yields no events and events without an id are skipped.
func (s *Source) LoadGallery(ctx context.Context) ([]model.GalleryEvent, error) {
	root := filepath.Join(s.dataDir, filepath.FromSlash(galleryDir))
	if !fsutil.Exists(root) {
		s.log.Warn(ctx, "gallery content directory not found", logger.String("dir", root))
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == infoFile {
			files = append(files, path)
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %w", ErrLoad, root, err)
	}
	sort.Strings(files)

	var events []model.GalleryEvent
	for _, file := range files {
		var ev model.GalleryEvent
		if err := readJSON(file, &ev); err != nil {
			s.log.Error(ctx, "failed to load gallery event", logger.String("file", file), logger.Error(err))
			metrics.RecordDropped("gallery_event", "invalid")
			continue
		}
		if ev.ID == "" {
			s.log.Error(ctx, "gallery event missing event_id", logger.String("file", file))
			metrics.RecordDropped("gallery_event", "missing_id")
			continue
		}
		ev.Dir = filepath.Dir(file)
		events = append(events, ev)
	}
	metrics.RecordLoaded("gallery_event", len(events))
	s.log.Info(ctx, "loaded gallery events", logger.Int("events", len(events)))
	return events, nil
}
