// Package service runs the site generation pipeline: load records, classify
// members, render pages and copy assets.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/labsite/internal/adapters/recordsource"
	"github.com/okian/labsite/internal/adapters/render"
	"github.com/okian/labsite/internal/adapters/roster"
	"github.com/okian/labsite/internal/adapters/sitecheck"
	"github.com/okian/labsite/internal/config"
	"github.com/okian/labsite/internal/domain/articles"
	"github.com/okian/labsite/internal/domain/status"
	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
)

// Generator builds the site. Runs are serialized.
type Generator struct {
	mu  sync.Mutex
	cfg config.Config
	now func() time.Time
	log logger.Logger
}

// Report summarizes one run.
type Report struct {
	RunID     string
	Articles  int
	News      int
	Research  int
	Current   int
	Alumni    int
	Undecided int
	// Issues are the recoverable classification problems.
	Issues []error
	// Roster lists the exported roster files.
	Roster []string
	// Broken holds the link check findings when the check ran.
	Broken   []sitecheck.Broken
	Duration time.Duration
}

// New constructs a Generator with the default configuration.
func New(opts ...Option) *Generator {
	g := &Generator{
		cfg: *config.New(),
		now: time.Now,
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the effective configuration.
func (g *Generator) Config() config.Config { return g.cfg }

type stage struct {
	name string
	fn   func(ctx context.Context, r *run) error
}

// run carries the state of one pipeline execution between stages.
type run struct {
	g       *Generator
	log     logger.Logger
	src     *recordsource.Source
	engine  *render.Engine
	content render.Content
	report  *Report
}

// Stages names the pipeline in execution order for the current settings.
func (g *Generator) Stages() []string {
	names := make([]string, 0, 20)
	for _, s := range g.stages() {
		names = append(names, s.name)
	}
	return names
}

func (g *Generator) stages() []stage {
	list := []stage{
		{"Load Articles", loadArticles},
		{"Load Member Data", loadMembers},
		{"Load Website Configuration", loadWebsite},
		{"Process Article Categories", processArticles},
		{"Process Member Roles", processMembers},
		{"Render Homepage", renderWith((*render.Engine).Homepage)},
		{"Render Contact Page", renderWith((*render.Engine).Contact)},
		{"Render Support Page", renderWith((*render.Engine).Support)},
		{"Render Join Us Page", renderWith((*render.Engine).JoinUs)},
		{"Render Member Pages", renderWith((*render.Engine).MemberPages)},
		{"Render Research Pages", renderWith((*render.Engine).ResearchPages)},
		{"Render News Pages", renderWith((*render.Engine).NewsPages)},
		{"Render Gallery Page", renderWith((*render.Engine).Gallery)},
		{"Copy Assets", copyAssets},
	}
	if g.cfg.RosterEnabled {
		list = append(list, stage{"Export Roster", exportRoster})
	}
	if g.cfg.CheckLinks {
		list = append(list, stage{"Check Links", checkLinks})
	}
	if g.cfg.MetricsFile != "" {
		list = append(list, stage{"Write Metrics", writeMetrics})
	}
	return list
}

// Run executes every stage in order and stops at the first failure.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := g.log.With(logger.String("run_id", report.RunID))
	log.Info(ctx, "website generator started", logger.String("output", g.cfg.OutputDir))

	engine, err := render.New(
		render.WithLogger(log.Named("render")),
		render.WithOutputDir(g.cfg.OutputDir),
		render.WithTemplateDir(g.cfg.TemplateDir),
		render.WithTagColors(articles.TagPalette(g.cfg.TagColors)),
	)
	if err != nil {
		return report, err
	}
	r := &run{
		g:   g,
		log: log,
		src: recordsource.New(
			recordsource.WithLogger(log.Named("source")),
			recordsource.WithDataDir(g.cfg.DataDir),
			recordsource.WithArticlesDir(g.cfg.ArticlesDir),
			recordsource.WithOutputDir(g.cfg.OutputDir),
			recordsource.WithPlatform(g.cfg.ArticlePlatform),
			recordsource.WithCategoryMap(g.cfg.CategoryMap),
			recordsource.WithNow(g.now),
		),
		engine: engine,
		report: report,
	}

	stages := g.stages()
	for i, s := range stages {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%w: %s: %w", ErrStage, s.name, err)
		}
		log.Info(ctx, fmt.Sprintf("[%d/%d] Starting: %s", i+1, len(stages), s.name))
		began := time.Now()
		err := s.fn(ctx, r)
		metrics.ObserveStage(s.name, time.Since(began).Seconds())
		if err != nil {
			metrics.RecordStageFailure(s.name)
			log.Error(ctx, "Failed: "+s.name, logger.Error(err))
			return report, fmt.Errorf("%w: %s: %w", ErrStage, s.name, err)
		}
		log.Info(ctx, "Completed: "+s.name)
	}

	metrics.MarkBuildFinished(g.now().Unix())
	report.Duration = time.Since(start)
	log.Info(ctx, "website generation complete",
		logger.Int("current", report.Current),
		logger.Int("alumni", report.Alumni),
		logger.Float64("seconds", report.Duration.Seconds()))
	return report, nil
}

func loadArticles(ctx context.Context, r *run) error {
	all, err := r.src.LoadArticles(ctx)
	if err != nil {
		return err
	}
	r.content.Articles = all
	r.report.Articles = len(all)
	return nil
}

func loadMembers(ctx context.Context, r *run) error {
	m, err := r.src.LoadMembers(ctx)
	if err != nil {
		return err
	}
	r.content.Members = m
	return nil
}

func loadWebsite(ctx context.Context, r *run) error {
	w, err := r.src.LoadWebsite(ctx)
	if err != nil {
		return err
	}
	r.content.Website = w
	gallery, err := r.src.LoadGallery(ctx)
	if err != nil {
		return err
	}
	r.content.Gallery = gallery
	return nil
}

func processArticles(ctx context.Context, r *run) error {
	r.content.News, r.content.Research = articles.Split(r.content.Articles)
	r.content.Recent = articles.LatestPerCategory(r.content.Articles)
	r.report.News, r.report.Research = len(r.content.News), len(r.content.Research)
	r.log.Info(ctx, "articles split",
		logger.Int("news", r.report.News),
		logger.Int("research", r.report.Research),
		logger.Int("recent", len(r.content.Recent)))
	return nil
}

func processMembers(ctx context.Context, r *run) error {
	cfg := r.g.cfg
	c := status.New(
		status.WithLogger(r.log.Named("status")),
		status.WithHomeInstitution(cfg.HomeInstitution),
		status.WithHomeOrganizations(cfg.HomeOrganizations...),
		status.WithRoleMap(cfg.RoleMap),
		status.WithDegreeRoles(cfg.DegreeRoles),
		status.WithHierarchy(r.content.Website.RoleHierarchy),
		status.WithPolicy(status.Policy(cfg.UndecidedPolicy)),
		status.WithNow(r.g.now),
	)
	res := c.Classify(ctx, r.content.Members.StatusInput())
	r.content.Status = res

	unranked := 0
	for _, issue := range res.Issues {
		var amb *status.AmbiguousDateError
		var unr *status.UnrankedRoleWarning
		switch {
		case errors.As(issue, &amb):
			metrics.RecordDateUnparsed()
		case errors.As(issue, &unr):
			unranked = len(unr.Roles)
		}
	}
	metrics.UpdateMembers(len(res.Current), len(res.Alumni), len(res.Undecided))
	metrics.UpdateUnrankedRoles(unranked)

	r.report.Current, r.report.Alumni, r.report.Undecided = len(res.Current), len(res.Alumni), len(res.Undecided)
	r.report.Issues = res.Issues

	linker := articles.NewLinker(r.content.Members.Info, res.IsCurrent)
	r.content.News = linker.LinkNews(r.content.News)
	return nil
}

func renderWith(page func(*render.Engine, context.Context, *render.Content) error) func(context.Context, *run) error {
	return func(ctx context.Context, r *run) error {
		return page(r.engine, ctx, &r.content)
	}
}

func copyAssets(ctx context.Context, r *run) error {
	return r.engine.CopyAssets(ctx, r.g.cfg.AssetsDir)
}

func exportRoster(ctx context.Context, r *run) error {
	files, err := roster.New(
		roster.WithLogger(r.log.Named("roster")),
		roster.WithDir(filepath.Join(r.g.cfg.OutputDir, "roster")),
	).Export(ctx, r.content.Status)
	r.report.Roster = files
	return err
}

func checkLinks(ctx context.Context, r *run) error {
	broken, err := sitecheck.New(r.g.cfg.OutputDir, sitecheck.WithLogger(r.log.Named("sitecheck"))).Check(ctx)
	if err != nil {
		return err
	}
	r.report.Broken = broken
	return nil
}

func writeMetrics(ctx context.Context, r *run) error {
	metrics.MarkBuildFinished(r.g.now().Unix())
	if err := metrics.WriteTextfile(r.g.cfg.MetricsFile); err != nil {
		return err
	}
	r.log.Info(ctx, "metrics written", logger.String("file", r.g.cfg.MetricsFile))
	return nil
}
