// Package recordsource loads the group data tree (members, articles and
// website configuration) into typed collections.
package recordsource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/okian/labsite/pkg/logger"
)

// Default locations and values.
const (
	DefaultPlatform    = "kg"
	DefaultCoverHeight = "330px"
	DefaultCoverWidth  = "520px"

	// ArticleImagePath is where article images land, relative to the output dir.
	ArticleImagePath = "website_files/images/article_content"

	membersDir     = "members"
	detailDir      = "jsons"
	websiteDataDir = "website_data"
	galleryDir     = "website_data/content/gallery"
	infoFile       = "info.json"
)

// DefaultCategoryMap renames legacy article categories.
func DefaultCategoryMap() map[string]string {
	return map[string]string{"Overview": "Computational Metascience"}
}

// Source reads records from the file system.
type Source struct {
	dataDir     string
	articlesDir string
	outputDir   string
	platform    string
	categoryMap map[string]string
	now         func() time.Time
	log         logger.Logger
}

// New creates a record source with configuration options.
func New(opts ...Option) *Source {
	s := &Source{
		dataDir:     "group-data",
		articlesDir: "research_news/articles",
		outputDir:   "site",
		platform:    DefaultPlatform,
		categoryMap: DefaultCategoryMap(),
		now:         time.Now,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// readJSON decodes a JSON file into v.
func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRecord, path, err)
	}
	return nil
}
