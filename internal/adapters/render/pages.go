package render

import (
	"context"

	"github.com/okian/labsite/internal/adapters/recordsource"
	"github.com/okian/labsite/internal/domain/articles"
	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/internal/domain/status"
	"github.com/okian/labsite/internal/domain/types"
	"github.com/okian/labsite/pkg/logger"
)

// Content is everything the pages are built from.
type Content struct {
	Website  *recordsource.Website
	Members  *recordsource.Members
	Status   status.Result
	Articles []model.Article
	News     []model.Article
	Research []model.Article
	Recent   []model.Article
	Gallery  []model.GalleryEvent
}

func (c *Content) general() map[string]any {
	if c.Website == nil {
		return nil
	}
	return c.Website.General
}

// HomepageData feeds index.html.
type HomepageData struct {
	Homepage map[string]any
	Recent   []model.Article
}

// MemberListData feeds current_members.html.
type MemberListData struct {
	Members []types.CurrentMember
}

// AlumniData feeds alumni_members.html.
type AlumniData struct {
	Alumni []types.AlumniMember
}

// MemberData feeds members/<id>/<id>.html.
type MemberData struct {
	Info       model.MemberInfo
	Current    bool
	Role       string
	Education  []model.EducationRecord
	Experience []model.ExperienceRecord
	Projects   []model.ProjectRecord
	Awards     []model.Award
	Outreach   []model.Outreach
	Documents  []model.Document
	Articles   []model.Article
}

// ResearchData feeds Research.html and the category front pages.
type ResearchData struct {
	Research   map[string]any
	Categories []string
	Category   string
	Articles   []model.Article
}

// ArticleData feeds a single research or news article page.
type ArticleData struct {
	Article  model.Article
	Category string
}

// NewsData feeds News.html.
type NewsData struct {
	Articles []model.Article
}

// GalleryData feeds Gallery.html.
type GalleryData struct {
	Events []model.GalleryEvent
}

// Homepage renders index.html with the latest article of each category.
func (e *Engine) Homepage(ctx context.Context, c *Content) error {
	e.log.Info(ctx, "rendering homepage")
	return e.Render(ctx, "homepage", "index", "index.html", c.general(), "Home",
		HomepageData{Homepage: c.Website.Homepage, Recent: c.Recent})
}

// Contact renders Contact.html.
func (e *Engine) Contact(ctx context.Context, c *Content) error {
	e.log.Info(ctx, "rendering contact page")
	return e.Render(ctx, "contact", "contact", "Contact.html", c.general(), "Contact", c.Website.Contact)
}

// Support renders Support.html.
func (e *Engine) Support(ctx context.Context, c *Content) error {
	e.log.Info(ctx, "rendering support page")
	return e.Render(ctx, "support", "support", "Support.html", c.general(), "Support", c.Website.Support)
}

// JoinUs renders Join_Us.html from the opportunities file.
func (e *Engine) JoinUs(ctx context.Context, c *Content) error {
	e.log.Info(ctx, "rendering join us page")
	return e.Render(ctx, "join_us", "join_us", "Join_Us.html", c.general(), "Join Us", c.Website.Opportunities)
}

// MemberPages renders the current and alumni lists and one page per member.
func (e *Engine) MemberPages(ctx context.Context, c *Content) error {
	e.log.Info(ctx, "rendering member pages")
	if err := e.Render(ctx, "current_members", "current_members", "current_members.html", c.general(), "Current Members",
		MemberListData{Members: c.Status.Current}); err != nil {
		return err
	}
	if err := e.Render(ctx, "alumni_members", "alumni_members", "alumni_members.html", c.general(), "Alumni",
		AlumniData{Alumni: c.Status.Alumni}); err != nil {
		return err
	}

	m := c.Members
	for _, id := range m.Order {
		cl := c.Status.ByID[id]
		data := MemberData{
			Info:       m.Info[id],
			Current:    cl.Current,
			Role:       cl.Role,
			Education:  m.Education[id],
			Experience: m.Experience[id],
			Projects:   m.Projects[id],
			Awards:     m.Awards[id],
			Outreach:   m.Outreach[id],
			Documents:  m.Documents[id],
			Articles:   articles.ByMember(c.Research, id),
		}
		if err := e.Render(ctx, "member", "member", MemberPath(id), c.general(), data.Info.FullName(), data); err != nil {
			return err
		}
	}
	e.log.Info(ctx, "rendered member pages", logger.Int("members", len(m.Order)))
	return nil
}

// ResearchPages renders Research.html, one front page per category and one
// page per research article.
func (e *Engine) ResearchPages(ctx context.Context, c *Content) error {
	e.log.Info(ctx, "rendering research pages")
	cats := articles.Categories(c.Research)
	if err := e.Render(ctx, "research", "research", "Research.html", c.general(), "Research",
		ResearchData{Research: c.Website.Research, Categories: cats, Articles: c.Research}); err != nil {
		return err
	}
	for _, cat := range cats {
		data := ResearchData{
			Research:   c.Website.Research,
			Categories: cats,
			Category:   cat,
			Articles:   articles.InCategory(c.Research, cat),
		}
		if err := e.Render(ctx, "research_category", "sub_research", CategoryPath(cat), c.general(), cat, data); err != nil {
			return err
		}
	}
	for _, a := range c.Research {
		if err := e.Render(ctx, "research_article", "research_article", ResearchArticlePath(a), c.general(), a.Title,
			ArticleData{Article: a, Category: a.Category}); err != nil {
			return err
		}
	}
	e.log.Info(ctx, "rendered research pages", logger.Int("categories", len(cats)), logger.Int("articles", len(c.Research)))
	return nil
}

// NewsPages renders News.html and one page per news article.
func (e *Engine) NewsPages(ctx context.Context, c *Content) error {
	e.log.Info(ctx, "rendering news pages")
	if err := e.Render(ctx, "news", "news", "News.html", c.general(), "News", NewsData{Articles: c.News}); err != nil {
		return err
	}
	for _, a := range c.News {
		if err := e.Render(ctx, "news_article", "news_article", NewsArticlePath(a), c.general(), a.Title,
			ArticleData{Article: a, Category: model.CategoryNews}); err != nil {
			return err
		}
	}
	e.log.Info(ctx, "rendered news pages", logger.Int("articles", len(c.News)))
	return nil
}
