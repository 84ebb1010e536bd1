package recordsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/okian/labsite/internal/domain/dedupe"
	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/pkg/fsutil"
	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
)

var requiredArticleFields = []string{"date", "platforms", "cover_image", "content", "category"} //nolint:gochecknoglobals // read-only

// LoadArticles reads every info.json below the articles directory. Articles
// not published to the configured platform or dated in the future are
// skipped, and broken ones are logged and skipped. Cover and content images
// are copied into the output tree.
func (s *Source) LoadArticles(ctx context.Context) ([]model.Article, error) {
	s.log.Info(ctx, "loading articles", logger.String("dir", s.articlesDir))
	if !fsutil.Exists(s.articlesDir) {
		return nil, fmt.Errorf("%w: %w: article directory %s", ErrLoad, ErrMissingFile, s.articlesDir)
	}

	var files []string
	err := filepath.WalkDir(s.articlesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == infoFile {
			files = append(files, path)
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %w", ErrLoad, s.articlesDir, err)
	}
	sort.Strings(files)
	s.log.Info(ctx, "found article files", logger.Int("files", len(files)))

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	paths := dedupe.NewInMemoryDeduper(dedupe.WithCaseFolding())

	var out []model.Article
	for _, file := range files {
		a, ok, err := s.loadArticle(ctx, file, today)
		if err != nil {
			s.log.Error(ctx, "failed to load article", logger.String("article", filepath.Base(filepath.Dir(file))), logger.Error(err))
			metrics.RecordDropped("article", "invalid")
			continue
		}
		if !ok {
			metrics.RecordDropped("article", "unpublished")
			continue
		}
		if seen, owner := paths.SeenAndRecord(a.Category+"/"+a.ID, file); seen {
			s.log.Warn(ctx, "duplicate article id, skipping",
				logger.String("article", a.ID), logger.String("file", file), logger.String("first_file", owner))
			metrics.RecordDropped("article", "duplicate")
			continue
		}
		out = append(out, a)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrLoad, ErrNoArticles)
	}
	news := 0
	for _, a := range out {
		if a.Category == model.CategoryNews {
			news++
		}
	}
	metrics.RecordLoaded("article", len(out))
	s.log.Info(ctx, "loaded articles",
		logger.Int("articles", len(out)),
		logger.Int("news", news),
		logger.Int("research", len(out)-news),
		logger.Int("claimed_paths", paths.Size()))
	return out, nil
}

// loadArticle returns ok=false for articles that are valid but not to be published.
func (s *Source) loadArticle(ctx context.Context, file string, today time.Time) (model.Article, bool, error) {
	var fields map[string]json.RawMessage
	if err := readJSON(file, &fields); err != nil {
		return model.Article{}, false, err
	}
	var missing []string
	for _, f := range requiredArticleFields {
		if _, ok := fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return model.Article{}, false, fmt.Errorf("%w: %s in %s", ErrMissingField, strings.Join(missing, ", "), file)
	}

	var a model.Article
	if err := readJSON(file, &a); err != nil {
		return model.Article{}, false, err
	}
	dir := filepath.Dir(file)
	if a.ID == "" {
		a.ID = filepath.Base(dir)
	}

	date, err := time.Parse(model.ArticleDateLayout, a.RawDate)
	if err != nil {
		return model.Article{}, false, fmt.Errorf("%w: date %q in %s: %w", ErrInvalidRecord, a.RawDate, file, err)
	}
	a.Date = date

	if !a.PublishedTo(s.platform) {
		s.log.Debug(ctx, "skipping article not published here", logger.String("article", a.ID), logger.String("platform", s.platform))
		return model.Article{}, false, nil
	}
	if a.Date.After(today) {
		s.log.Debug(ctx, "skipping future article", logger.String("article", a.ID), logger.String("date", a.RawDate))
		return model.Article{}, false, nil
	}

	if a.CoverImage, err = s.copyArticleImage(dir, a.CoverImage); err != nil {
		return model.Article{}, false, err
	}
	a.Content = a.Content.Clone()
	for i, b := range a.Content {
		if !b.IsImage() {
			continue
		}
		if a.Content[i].Value, err = s.copyArticleImage(dir, b.Value); err != nil {
			return model.Article{}, false, err
		}
	}

	if a.CoverHeight == "" {
		a.CoverHeight = DefaultCoverHeight
	}
	if a.CoverWidth == "" {
		a.CoverWidth = DefaultCoverWidth
	}
	if c, ok := s.categoryMap[a.Category]; ok {
		a.Category = c
	}
	a.ImageName = filepath.Base(a.CoverImage)
	return a, true, nil
}

// copyArticleImage copies <article>/media/images/<base of ref> into the
// output image directory and returns its site-relative path.
func (s *Source) copyArticleImage(articleDir, ref string) (string, error) {
	name := filepath.Base(filepath.FromSlash(ref))
	src := filepath.Join(articleDir, "media", "images", name)
	if !fsutil.Exists(src) {
		return "", fmt.Errorf("%w: image %s (referenced as %q)", ErrMissingFile, src, ref)
	}
	dst := filepath.Join(s.outputDir, filepath.FromSlash(ArticleImagePath), name)
	if err := fsutil.CopyFile(src, dst); err != nil {
		return "", err
	}
	return ArticleImagePath + "/" + name, nil
}
