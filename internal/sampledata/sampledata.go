// Package sampledata writes a small but complete data tree that the
// generator can build a site from.
package sampledata

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/pkg/logger"
)

// Fixed member ids written on every run.
const (
	Professor     model.MemberID = "prof"
	Graduate      model.MemberID = "grad"
	Undergraduate model.MemberID = "under"
	Alumnus       model.MemberID = "alum"
)

// HomeInstitution and HomeGroup match the generator defaults.
const (
	HomeInstitution = "Michigan State University"
	HomeGroup       = "TARDIS"
)

var extraCategories = []string{"Machine Learning", "Astrophysics", "Software"} //nolint:gochecknoglobals // read-only

// Options controls how much data is generated.
type Options struct {
	// Members adds that many random members on top of the fixed ones.
	Members int
	// Articles adds that many random research articles.
	Articles int
	// Now anchors every generated date; zero means time.Now().
	Now time.Time
	Log logger.Logger
}

// Layout tells where the generated tree lives.
type Layout struct {
	DataDir     string
	ArticlesDir string
	AssetsDir   string
	// Members lists every generated member id in directory order.
	Members []model.MemberID
	// Articles lists every generated article id.
	Articles []string
}

type writer struct {
	now time.Time
	err error
}

// Generate writes the tree below dir.
func Generate(ctx context.Context, dir string, opts Options) (*Layout, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	l := &Layout{
		DataDir:     filepath.Join(dir, "group-data"),
		ArticlesDir: filepath.Join(dir, "research_news", "articles"),
		AssetsDir:   filepath.Join(dir, "assets"),
	}
	w := &writer{now: opts.Now}

	w.fixedMembers(l)
	for i := 0; i < opts.Members && w.err == nil; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate members: %w", err)
		}
		w.randomMember(l)
	}

	w.fixedArticles(l)
	for i := 0; i < opts.Articles && w.err == nil; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate articles: %w", err)
		}
		w.randomArticle(l, i)
	}

	w.website(l)
	w.gallery(l)
	w.text(filepath.Join(l.AssetsDir, "css", "site.css"), "body { font-family: sans-serif; }\n")

	if w.err != nil {
		return nil, fmt.Errorf("generate sample data in %s: %w", dir, w.err)
	}
	opts.Log.Info(ctx, "sample data written",
		logger.String("dir", dir),
		logger.Int("members", len(l.Members)),
		logger.Int("articles", len(l.Articles)))
	return l, nil
}

func (w *writer) date(yearsAgo int) string {
	return w.now.AddDate(-yearsAgo, 0, 0).Format("2006-01-02")
}

func (w *writer) member(l *Layout, id model.MemberID, first, last string, tables map[string]any) {
	dir := filepath.Join(l.DataDir, "members", string(id))
	w.json(filepath.Join(dir, "info.json"), map[string]any{
		"id":          id,
		"first_name":  first,
		"last_name":   last,
		"email":       string(id) + "@example.org",
		"bio":         first + " works on **open science**.",
		"institution": HomeInstitution,
	})
	for name, rows := range tables {
		w.json(filepath.Join(dir, "jsons", name+".json"), rows)
	}
	l.Members = append(l.Members, id)
}

func (w *writer) fixedMembers(l *Layout) {
	w.member(l, Professor, "Grace", "Hopper", map[string]any{
		"experiences": []map[string]any{
			{"group": HomeGroup, "role": "Assistant Professor", "institution": HomeInstitution, "start_date": w.date(8)},
			{"group": "Navy Lab", "role": "Researcher", "start_date": w.date(20), "end_date": w.date(9)},
		},
		"social_links": map[string]string{"github": "https://github.com/example"},
		"awards":       []map[string]any{{"title": "Teaching Award", "issuer": "College", "date": w.date(2)}},
	})
	w.member(l, Graduate, "Ada", "Lovelace", map[string]any{
		"education": []map[string]any{
			{"institution": HomeInstitution, "degree": model.DegreePhD, "field": "Physics", "start_date": w.date(2)},
			{"institution": "Other College", "degree": model.DegreeBachelors, "start_date": w.date(7), "end_date": w.date(3)},
		},
		"projects": []map[string]any{{"project_title": "Analytical Engines", "start_date": w.date(1)}},
		"outreach": []map[string]any{{"title": "School Visits", "organization": "Museum"}},
	})
	w.member(l, Undergraduate, "Alan", "Turing", map[string]any{
		"education": []map[string]any{
			{"institution": HomeInstitution, "degree": model.DegreeBachelors, "start_date": w.date(1)},
		},
	})
	w.member(l, Alumnus, "Bob", "Ross", map[string]any{
		"experiences": []map[string]any{
			{"group": HomeGroup, "role": "Postdoc", "start_date": w.date(6), "end_date": w.date(3)},
		},
	})
}

func (w *writer) randomMember(l *Layout) {
	id := model.MemberID("member-" + uuid.NewString()[:8])
	exp := map[string]any{"group": HomeGroup, "role": "Research Assistant", "start_date": w.date(2 + randInt(5))}
	if randInt(2) == 0 {
		exp["end_date"] = w.date(1)
	}
	w.member(l, id, "Sample", string(id), map[string]any{"experiences": []map[string]any{exp}})
}

func (w *writer) article(l *Layout, id, title, category string, tags []string, daysAgo int, content map[string]string) {
	dir := filepath.Join(l.ArticlesDir, id)
	cover := id + "-cover.png"
	w.png(filepath.Join(dir, "media", "images", cover), 64, 32)

	body := map[string]any{}
	for k, v := range content {
		if k == "img1" {
			w.png(filepath.Join(dir, "media", "images", v), 32, 32)
			v = "media/images/" + v
		}
		body[k] = v
	}
	w.json(filepath.Join(dir, "info.json"), map[string]any{
		"article_id":        id,
		"title":             title,
		"short_description": "About " + title,
		"category":          category,
		"tags":              tags,
		"platforms":         []string{"kg"},
		"date":              w.now.AddDate(0, 0, -daysAgo).Format(model.ArticleDateLayout),
		"cover_image":       "media/images/" + cover,
		"content":           body,
	})
	l.Articles = append(l.Articles, id)
}

func (w *writer) fixedArticles(l *Layout) {
	w.article(l, "welcome", "Welcome Ada", model.CategoryNews, []string{"news", "new team member"}, 3,
		map[string]string{"para1": "Please welcome [" + string(Graduate) + "] to the group."})
	w.article(l, "engines", "Analytical Engines", "Machine Learning", []string{"paper"}, 10,
		map[string]string{"para1": "Work led by [" + string(Professor) + "].", "img1": "engines-fig.png"})
	w.article(l, "toolkit", "Lab Toolkit", "Software", []string{"software"}, 20,
		map[string]string{"para1": "A toolkit by [" + string(Graduate) + "]."})
	w.article(l, "overview", "What We Study", "Overview", []string{"research"}, 30,
		map[string]string{"para1": "An overview."})
}

func (w *writer) randomArticle(l *Layout, i int) {
	id := fmt.Sprintf("article-%03d", i+1)
	cat := extraCategories[randInt(len(extraCategories))]
	w.article(l, id, "Sample Article "+id, cat, []string{"research"}, 1+randInt(365),
		map[string]string{"para1": "Generated text."})
}

func (w *writer) website(l *Layout) {
	root := filepath.Join(l.DataDir, "website_data")
	w.json(filepath.Join(root, "general.json"), map[string]any{
		"title": "Sample Lab", "footer": "Sample Lab, " + HomeInstitution, "email": "lab@example.org",
	})
	w.json(filepath.Join(root, "homepage.json"), map[string]any{"headline": "We build tools for science", "intro": "Welcome to the **Sample Lab**."})
	w.json(filepath.Join(root, "contact.json"), map[string]any{"email": "lab@example.org", "address": "1 Lab Way"})
	w.json(filepath.Join(root, "research_categories.json"), map[string]any{"intro": "Our research areas."})
	w.json(filepath.Join(root, "support.json"), map[string]any{
		"intro":    "We thank our sponsors.",
		"sponsors": []map[string]string{{"name": "Sample Foundation", "url": "https://example.org"}},
	})
	w.json(filepath.Join(root, "content", "opportunities.json"), map[string]any{
		"intro":     "We are hiring.",
		"positions": []map[string]string{{"title": "Graduate Student", "description": "Join us."}},
	})
	w.json(filepath.Join(root, "role_hierarchy.json"), map[string]int{
		"Professor":               1,
		"Postdoctoral Researcher": 2,
		"Graduate Student":        3,
		"Undergraduate Student":   4,
	})
}

func (w *writer) gallery(l *Layout) {
	dir := filepath.Join(l.DataDir, "website_data", "content", "gallery", "retreat")
	w.png(filepath.Join(dir, "media", "images", "group.png"), 200, 100)
	w.json(filepath.Join(dir, "info.json"), map[string]any{
		"event_id":    "retreat",
		"title":       "Group Retreat",
		"description": "A day out.",
		"date":        w.date(0),
		"images":      []map[string]string{{"image_path": "media/images/group.png", "caption": "Everyone"}},
	})
}

func (w *writer) mkdir(path string) bool {
	if w.err != nil {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		w.err = err
		return false
	}
	return true
}

func (w *writer) json(path string, v any) {
	if !w.mkdir(path) {
		return
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.err = fmt.Errorf("encode %s: %w", path, err)
		return
	}
	w.err = os.WriteFile(path, b, 0o644)
}

func (w *writer) text(path, s string) {
	if !w.mkdir(path) {
		return
	}
	w.err = os.WriteFile(path, []byte(s), 0o644)
}

func (w *writer) png(path string, width, height int) {
	if !w.mkdir(path) {
		return
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 160, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		w.err = err
		return
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		w.err = fmt.Errorf("encode %s: %w", path, err)
		return
	}
	w.err = f.Close()
}

// randInt returns a random int in [0, n) using crypto/rand.
func randInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
