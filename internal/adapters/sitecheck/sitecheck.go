// Package sitecheck finds relative links in the generated site that point
// at files which do not exist.
package sitecheck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
)

// ErrCheck is returned when the site cannot be walked or a page cannot be parsed.
var ErrCheck = errors.New("site check failed")

// Broken is one reference whose target is missing.
type Broken struct {
	// Page is the slash-separated path of the referring page.
	Page string
	// Ref is the attribute value as written.
	Ref string
}

func (b Broken) String() string { return b.Page + " -> " + b.Ref }

// Option applies a configuration option to the Checker.
type Option func(*Checker)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.log = l
		}
	}
}

// Checker walks a site directory.
type Checker struct {
	root string
	log  logger.Logger
}

// New creates a Checker for the site rooted at root.
func New(root string, opts ...Option) *Checker {
	c := &Checker{root: root, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var refAttrs = []struct{ sel, attr string }{ //nolint:gochecknoglobals // read-only
	{"a[href]", "href"},
	{"link[href]", "href"},
	{"img[src]", "src"},
	{"script[src]", "src"},
}

// Check parses every *.html file and returns the broken references sorted
// by page then ref.
func (c *Checker) Check(ctx context.Context) ([]Broken, error) {
	var pages []string
	err := filepath.WalkDir(c.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".html") {
			pages = append(pages, p)
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", ErrCheck, c.root, err)
	}

	var broken []Broken
	for _, p := range pages {
		found, err := c.checkPage(p)
		if err != nil {
			return nil, err
		}
		broken = append(broken, found...)
	}
	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Page != broken[j].Page {
			return broken[i].Page < broken[j].Page
		}
		return broken[i].Ref < broken[j].Ref
	})

	metrics.UpdateBrokenLinks(len(broken))
	for _, b := range broken {
		c.log.Warn(ctx, "broken link", logger.String("page", b.Page), logger.String("ref", b.Ref))
	}
	c.log.Info(ctx, "site checked", logger.Int("pages", len(pages)), logger.Int("broken", len(broken)))
	return broken, nil
}

func (c *Checker) checkPage(file string) ([]Broken, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrCheck, file, err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrCheck, file, err)
	}

	rel, err := filepath.Rel(c.root, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheck, err)
	}
	page := filepath.ToSlash(rel)

	seen := map[string]bool{}
	var broken []Broken
	for _, ra := range refAttrs {
		doc.Find(ra.sel).Each(func(_ int, s *goquery.Selection) {
			ref, _ := s.Attr(ra.attr)
			if seen[ref] {
				return
			}
			seen[ref] = true
			target, ok := Resolve(page, ref)
			if !ok {
				return
			}
			if escapes(target) {
				broken = append(broken, Broken{Page: page, Ref: ref})
				return
			}
			if _, err := os.Stat(filepath.Join(c.root, filepath.FromSlash(target))); err != nil {
				broken = append(broken, Broken{Page: page, Ref: ref})
			}
		})
	}
	return broken, nil
}

// Resolve returns the site-relative target of ref as seen from page. It
// reports false for references that are not checked: external URLs,
// fragments, mailto and other schemes, and absolute paths.
func Resolve(page, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	return path.Clean(path.Join(path.Dir(page), u.Path)), true
}

func escapes(target string) bool {
	return target == ".." || strings.HasPrefix(target, "../")
}
