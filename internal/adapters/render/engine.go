// Package render writes the site pages through html/template.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/labsite/internal/domain/articles"
	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/pkg/fsutil"
	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
)

// DefaultSectionHeadings titles the sections of a member page.
func DefaultSectionHeadings() map[string]string {
	return map[string]string{
		"education":   "Education",
		"experiences": "Experience",
		"projects":    "Projects",
		"awards":      "Awards & Recognition",
		"outreach":    "Outreach Programs",
	}
}

// Page is the value every template is executed with.
type Page struct {
	// Level is the directory depth of the output file, used for relative links.
	Level   int
	Title   string
	General map[string]any
	Data    any
}

// Engine renders named templates into the output tree.
type Engine struct {
	outputDir   string
	templateDir string
	tagColors   articles.TagPalette
	sections    map[string]string
	tmpl        *template.Template
	log         logger.Logger
}

// New parses the built-in templates and any overrides.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		outputDir: "site",
		tagColors: articles.DefaultTagColors(),
		sections:  DefaultSectionHeadings(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	t, err := template.New("site").Funcs(e.funcs()).ParseFS(defaultTemplates(), "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: %w: built-in templates: %w", ErrRender, ErrTemplate, err)
	}
	if e.templateDir != "" {
		matches, err := filepath.Glob(filepath.Join(e.templateDir, "*.tmpl"))
		if err != nil {
			return nil, fmt.Errorf("%w: %w: %s: %w", ErrRender, ErrTemplate, e.templateDir, err)
		}
		if len(matches) > 0 {
			if t, err = t.ParseFiles(matches...); err != nil {
				return nil, fmt.Errorf("%w: %w: overrides in %s: %w", ErrRender, ErrTemplate, e.templateDir, err)
			}
		}
	}
	e.tmpl = t
	return e, nil
}

// OutputDir returns the output root.
func (e *Engine) OutputDir() string { return e.outputDir }

// Level is the number of directories between outPath and the output root.
func Level(outPath string) int {
	return strings.Count(filepath.ToSlash(outPath), "/")
}

// Render executes template name and writes it to outPath under the output
// root. kind labels the page in metrics.
func (e *Engine) Render(ctx context.Context, kind, name, outPath string, general map[string]any, title string, data any) error {
	page := Page{Level: Level(outPath), Title: title, General: general, Data: data}

	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, page); err != nil {
		return fmt.Errorf("%w: %w: %s for %s: %w", ErrRender, ErrTemplate, name, outPath, err)
	}

	full := filepath.Join(e.outputDir, filepath.FromSlash(outPath))
	if err := fsutil.WriteFile(full, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	metrics.RecordPageRendered(kind)
	e.log.Debug(ctx, "rendered", logger.String("page", outPath))
	return nil
}

func (e *Engine) funcs() template.FuncMap {
	return template.FuncMap{
		"rel":          func(level int) string { return strings.Repeat("../", level) },
		"pageLink":     PageLink,
		"lower":        strings.ToLower,
		"tagColor":     func(tag string) string { return e.tagColors.Color(tag) },
		"para":         articles.Paragraph,
		"memberPath":   MemberPath,
		"articlePath":  ResearchArticlePath,
		"newsPath":     NewsArticlePath,
		"categoryPath": CategoryPath,
		"galleryPath":  func(id, p string) string { return path.Join(GalleryImagePath(id), p) },
		"section":      func(key string) string { return e.sections[key] },
		"join":         strings.Join,
		"dict":         dict,
		"fmtDate":      func(t time.Time) string { return t.Format("January 2, 2006") },
		"year":         func(d model.Date) string { return yearOf(d) },
	}
}

// dict builds a map from alternating keys and values so that templates
// can pass several values to a nested template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

func yearOf(d model.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006")
}

// PageLink replaces spaces with underscores.
func PageLink(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}

// MemberPath is the output path of a member page.
func MemberPath(id model.MemberID) string {
	return path.Join("members", string(id), string(id)+".html")
}

// CategoryPath is the output path of a research category front page.
func CategoryPath(category string) string {
	return "sub_research/" + PageLink(strings.ToLower(category)) + ".html"
}

// ResearchArticlePath is the output path of a research article. Software
// articles live directly under sub_research/.
func ResearchArticlePath(a model.Article) string {
	id := PageLink(strings.ToLower(a.ID))
	if a.Category == "Software" {
		return "sub_research/" + id + ".html"
	}
	return "sub_research/" + PageLink(strings.ToLower(a.Category)) + "/" + id + ".html"
}

// NewsArticlePath is the output path of a news article.
func NewsArticlePath(a model.Article) string {
	return "news/" + PageLink(strings.ToLower(a.ID)) + ".html"
}
