package render

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/labsite/internal/adapters/recordsource"
	"github.com/okian/labsite/internal/domain/model"
	"github.com/okian/labsite/internal/domain/status"
	"github.com/okian/labsite/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func openPage(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func fixture() *Content {
	ada := model.MemberInfo{ID: "ada", FirstName: "Ada", LastName: "Lovelace", Social: model.SocialLinks{"github": "https://github.com/ada"}}
	bob := model.MemberInfo{ID: "bob", FirstName: "Bob", LastName: "Ross"}

	research := []model.Article{
		{ID: "engine", Title: "Engine", Category: "Machine Learning", Tags: []string{"paper"},
			Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), CoverImage: "website_files/images/article_content/e.png",
			CoverHeight: "330px", CoverWidth: "520px",
			Content: model.Content{{Key: "para1", Value: "By [ada]"}, {Key: "img1", Value: "website_files/images/article_content/f.png"}}},
		{ID: "Tool Kit", Title: "Toolkit", Category: "Software",
			Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), CoverImage: "website_files/images/article_content/t.png"},
	}
	news := []model.Article{
		{ID: "welcome", Title: "Welcome", Category: model.CategoryNews, Tags: []string{"news"},
			Date:    time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
			Content: model.Content{{Key: "para1", Value: `Say hi to <a href="../members/ada/ada.html" target="_blank">Ada Lovelace</a>`}}},
	}

	return &Content{
		Website: &recordsource.Website{
			General:       map[string]any{"title": "Star Lab", "footer": "Made with care"},
			Homepage:      map[string]any{"headline": "We study stars"},
			Contact:       map[string]any{"email": "lab@example.org"},
			Research:      map[string]any{"intro": "What we do"},
			Support:       map[string]any{"sponsors": []any{map[string]any{"name": "NSF", "url": "https://nsf.gov"}}},
			Opportunities: map[string]any{"positions": []any{}},
		},
		Members: &recordsource.Members{
			Info:       map[model.MemberID]model.MemberInfo{"ada": ada, "bob": bob},
			Order:      []model.MemberID{"ada", "bob"},
			Education:  map[model.MemberID][]model.EducationRecord{"ada": {{Institution: "Home U", Degree: "PhD", StartDate: model.NewDate(2020, 9, 1)}}},
			Experience: map[model.MemberID][]model.ExperienceRecord{},
			Projects:   map[model.MemberID][]model.ProjectRecord{},
			Awards:     map[model.MemberID][]model.Award{},
			Outreach:   map[model.MemberID][]model.Outreach{},
			Documents:  map[model.MemberID][]model.Document{},
		},
		Status: status.Result{
			Current: []types.CurrentMember{{ID: "ada", Role: "Graduate Student", ProjectTitle: "Engines", Info: ada}},
			Alumni:  []types.AlumniMember{{ID: "bob", Role: "Postdoc", FullName: "Bob Ross"}},
			ByID: map[model.MemberID]status.Classification{
				"ada": {ID: "ada", Current: true, Role: "Graduate Student"},
				"bob": {ID: "bob", Role: "Postdoc"},
			},
		},
		Articles: append(append([]model.Article{}, news...), research...),
		News:     news,
		Research: research,
		Recent:   []model.Article{news[0], research[0]},
	}
}

func TestPaths(t *testing.T) {
	Convey("Output paths follow the site layout", t, func() {
		So(PageLink("Machine Learning"), ShouldEqual, "Machine_Learning")
		So(MemberPath("ada"), ShouldEqual, "members/ada/ada.html")
		So(CategoryPath("Machine Learning"), ShouldEqual, "sub_research/machine_learning.html")
		So(ResearchArticlePath(model.Article{ID: "Engine", Category: "Machine Learning"}), ShouldEqual,
			"sub_research/machine_learning/engine.html")
		So(ResearchArticlePath(model.Article{ID: "Tool Kit", Category: "Software"}), ShouldEqual, "sub_research/tool_kit.html")
		So(NewsArticlePath(model.Article{ID: "Welcome"}), ShouldEqual, "news/welcome.html")
		So(Level("index.html"), ShouldEqual, 0)
		So(Level("members/ada/ada.html"), ShouldEqual, 2)
		So(GalleryImagePath("retreat"), ShouldEqual, "website_files/images/gallery/retreat")
	})

	Convey("dict pairs keys with values", t, func() {
		m, err := dict("a", 1, "b", "x")
		So(err, ShouldBeNil)
		So(m, ShouldResemble, map[string]any{"a": 1, "b": "x"})

		_, err = dict("a")
		So(err, ShouldNotBeNil)
		_, err = dict(1, 2)
		So(err, ShouldNotBeNil)
	})
}

func TestPages(t *testing.T) {
	Convey("Given an engine and loaded content", t, func() {
		ctx := context.Background()
		out := t.TempDir()
		e, err := New(WithOutputDir(out))
		So(err, ShouldBeNil)
		c := fixture()

		Convey("When rendering the homepage", func() {
			So(e.Homepage(ctx, c), ShouldBeNil)
			doc := openPage(t, filepath.Join(out, "index.html"))

			Convey("Then it should show the headline and one card per recent article", func() {
				So(doc.Find("title").Text(), ShouldEqual, "Home | Star Lab")
				So(doc.Find(".hero h1").Text(), ShouldEqual, "We study stars")
				So(doc.Find("article.card").Length(), ShouldEqual, 2)
				href, _ := doc.Find("article.card h3 a").First().Attr("href")
				So(href, ShouldEqual, "news/welcome.html")
				So(doc.Find(".site-footer").Text(), ShouldContainSubstring, "Made with care")
			})

			Convey("Then tags should carry their palette colour", func() {
				style, _ := doc.Find("span.tag").First().Attr("style")
				So(style, ShouldContainSubstring, "#41EAD4")
			})
		})

		Convey("When rendering member pages", func() {
			So(e.MemberPages(ctx, c), ShouldBeNil)

			Convey("Then the current list should link each member page", func() {
				doc := openPage(t, filepath.Join(out, "current_members.html"))
				So(doc.Find(".person").Length(), ShouldEqual, 1)
				href, _ := doc.Find(".person h3 a").Attr("href")
				So(href, ShouldEqual, "members/ada/ada.html")
				So(doc.Find(".person .role").Text(), ShouldEqual, "Graduate Student")
				So(doc.Find(".person .project").Text(), ShouldEqual, "Engines")
			})

			Convey("Then the alumni table should list role and name", func() {
				doc := openPage(t, filepath.Join(out, "alumni_members.html"))
				So(doc.Find("table.alumni tbody tr").Length(), ShouldEqual, 1)
				So(doc.Find("table.alumni td").Eq(1).Text(), ShouldEqual, "Postdoc")
			})

			Convey("Then every member should get a page with links relative to its depth", func() {
				doc := openPage(t, filepath.Join(out, "members", "ada", "ada.html"))
				So(doc.Find(".profile h1").Text(), ShouldEqual, "Ada Lovelace")
				css, _ := doc.Find("link[rel=stylesheet]").Attr("href")
				So(css, ShouldEqual, "../../assets/css/site.css")
				So(doc.Find("section h2").First().Text(), ShouldEqual, "Education")
				So(doc.Find(".years").Text(), ShouldContainSubstring, "present")
				So(doc.Find("article.card").Length(), ShouldEqual, 1)

				alum := openPage(t, filepath.Join(out, "members", "bob", "bob.html"))
				So(alum.Find(".profile .role").Text(), ShouldEqual, "Postdoc (alumni)")
			})
		})

		Convey("When rendering research pages", func() {
			So(e.ResearchPages(ctx, c), ShouldBeNil)

			Convey("Then the overview, category pages and article pages should exist", func() {
				doc := openPage(t, filepath.Join(out, "Research.html"))
				So(doc.Find(".category").Length(), ShouldEqual, 2)
				for _, p := range []string{
					"sub_research/machine_learning.html",
					"sub_research/software.html",
					"sub_research/machine_learning/engine.html",
					"sub_research/tool_kit.html",
				} {
					_, statErr := os.Stat(filepath.Join(out, filepath.FromSlash(p)))
					So(statErr, ShouldBeNil)
				}
			})

			Convey("Then article bodies should keep block order", func() {
				doc := openPage(t, filepath.Join(out, "sub_research", "machine_learning", "engine.html"))
				So(doc.Find("article.full p").Eq(2).Text(), ShouldContainSubstring, "By [ada]")
				src, _ := doc.Find("figure img").Attr("src")
				So(src, ShouldEqual, "../../website_files/images/article_content/f.png")
				So(doc.Find(".date").Text(), ShouldEqual, "May 1, 2024")
			})
		})

		Convey("When rendering news pages", func() {
			So(e.NewsPages(ctx, c), ShouldBeNil)

			Convey("Then linked member names should survive as anchors", func() {
				doc := openPage(t, filepath.Join(out, "news", "welcome.html"))
				href, ok := doc.Find("article.full a[target=_blank]").Attr("href")
				So(ok, ShouldBeTrue)
				So(href, ShouldEqual, "../members/ada/ada.html")

				list := openPage(t, filepath.Join(out, "News.html"))
				So(list.Find("article.card").Length(), ShouldEqual, 1)
			})
		})

		Convey("When rendering the static pages", func() {
			So(e.Contact(ctx, c), ShouldBeNil)
			So(e.Support(ctx, c), ShouldBeNil)
			So(e.JoinUs(ctx, c), ShouldBeNil)

			Convey("Then each should use its own section", func() {
				contact := openPage(t, filepath.Join(out, "Contact.html"))
				So(contact.Find("dd a").Text(), ShouldEqual, "lab@example.org")

				support := openPage(t, filepath.Join(out, "Support.html"))
				href, _ := support.Find(".sponsors a").Attr("href")
				So(href, ShouldEqual, "https://nsf.gov")

				join := openPage(t, filepath.Join(out, "Join_Us.html"))
				So(join.Find("main").Text(), ShouldContainSubstring, "no open positions")
			})
		})
	})
}

func TestGallery(t *testing.T) {
	Convey("Given a gallery event with one real and one missing image", t, func() {
		ctx := context.Background()
		out := t.TempDir()
		evDir := filepath.Join(t.TempDir(), "retreat")
		writePNG(t, filepath.Join(evDir, "media", "images", "a.png"), 100, 50)

		c := fixture()
		c.Gallery = []model.GalleryEvent{{
			ID: "retreat", Title: "Retreat", Dir: evDir,
			Images: []model.GalleryImage{
				{Path: "media/images/a.png", Caption: "Group photo"},
				{Path: "media/images/gone.png"},
			},
		}}
		e, err := New(WithOutputDir(out))
		So(err, ShouldBeNil)

		Convey("When rendering the gallery", func() {
			So(e.Gallery(ctx, c), ShouldBeNil)
			doc := openPage(t, filepath.Join(out, "Gallery.html"))

			Convey("Then the missing image should be dropped and the rest scaled", func() {
				imgs := doc.Find(".photos img")
				So(imgs.Length(), ShouldEqual, 1)
				w, _ := imgs.Attr("width")
				h, _ := imgs.Attr("height")
				So(w, ShouldEqual, "70")
				So(h, ShouldEqual, "35")
				src, _ := imgs.Attr("src")
				So(src, ShouldEqual, "website_files/images/gallery/retreat/media/images/a.png")
				So(doc.Find("figcaption").Text(), ShouldEqual, "Group photo")
			})

			Convey("Then the event images should be copied into the site", func() {
				_, statErr := os.Stat(filepath.Join(out, "website_files", "images", "gallery", "retreat", "media", "images", "a.png"))
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When an image file is not really an image", func() {
			bogus := filepath.Join(evDir, "media", "images", "a.png")
			So(os.WriteFile(bogus, []byte("plain text"), 0o600), ShouldBeNil)
			_, _, sizeErr := imageSize(bogus)
			So(errors.Is(sizeErr, ErrNotImage), ShouldBeTrue)

			So(e.Gallery(ctx, c), ShouldBeNil)
			doc := openPage(t, filepath.Join(out, "Gallery.html"))

			Convey("Then it should be skipped while the event stays listed", func() {
				So(doc.Find(".photos img").Length(), ShouldEqual, 0)
				So(doc.Find("section.event").Length(), ShouldEqual, 1)
			})
		})

		Convey("When an image type has no header decoder", func() {
			webp := filepath.Join(evDir, "media", "images", "a.png")
			// RIFF....WEBP is sniffed as image/webp, which image.DecodeConfig cannot read here
			So(os.WriteFile(webp, []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00"), 0o600), ShouldBeNil)
			_, _, sizeErr := imageSize(webp)
			So(sizeErr, ShouldNotBeNil)
			So(errors.Is(sizeErr, ErrNotImage), ShouldBeFalse)

			So(e.Gallery(ctx, c), ShouldBeNil)
			doc := openPage(t, filepath.Join(out, "Gallery.html"))

			Convey("Then it should still be listed without dimensions", func() {
				imgs := doc.Find(".photos img")
				So(imgs.Length(), ShouldEqual, 1)
				_, hasWidth := imgs.Attr("width")
				So(hasWidth, ShouldBeFalse)
			})
		})
	})
}

func TestTemplatesAndAssets(t *testing.T) {
	Convey("Given a template override directory", t, func() {
		ctx := context.Background()
		out := t.TempDir()
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "contact.tmpl"),
			[]byte(`{{define "contact"}}<p id="custom">{{.Data.email}}</p>{{end}}`), 0o600), ShouldBeNil)

		Convey("When the override is valid", func() {
			e, err := New(WithOutputDir(out), WithTemplateDir(dir))
			So(err, ShouldBeNil)
			So(e.Contact(ctx, fixture()), ShouldBeNil)

			Convey("Then the override should replace the built-in template", func() {
				doc := openPage(t, filepath.Join(out, "Contact.html"))
				So(doc.Find("#custom").Text(), ShouldEqual, "lab@example.org")
			})
		})

		Convey("When an override does not parse", func() {
			So(os.WriteFile(filepath.Join(dir, "broken.tmpl"), []byte(`{{define "x"}}{{end`), 0o600), ShouldBeNil)
			_, err := New(WithTemplateDir(dir))

			Convey("Then New should fail with a template error", func() {
				So(errors.Is(err, ErrTemplate), ShouldBeTrue)
				So(errors.Is(err, ErrRender), ShouldBeTrue)
			})
		})

		Convey("When executing an unknown template", func() {
			e, err := New(WithOutputDir(out))
			So(err, ShouldBeNil)
			err = e.Render(ctx, "x", "nope", "x.html", nil, "X", nil)
			So(errors.Is(err, ErrTemplate), ShouldBeTrue)
		})
	})

	Convey("Given an assets directory", t, func() {
		ctx := context.Background()
		out := t.TempDir()
		src := t.TempDir()
		So(os.MkdirAll(filepath.Join(src, "css"), 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(src, "css", "site.css"), []byte("body{}"), 0o600), ShouldBeNil)
		e, err := New(WithOutputDir(out))
		So(err, ShouldBeNil)

		Convey("When copying", func() {
			So(e.CopyAssets(ctx, src), ShouldBeNil)
			b, readErr := os.ReadFile(filepath.Join(out, "assets", "css", "site.css"))
			So(readErr, ShouldBeNil)
			So(strings.TrimSpace(string(b)), ShouldEqual, "body{}")
		})

		Convey("When the directory is missing", func() {
			err := e.CopyAssets(ctx, filepath.Join(src, "nope"))
			So(errors.Is(err, ErrAssets), ShouldBeTrue)
		})
	})
}
