package sitecheck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolve(t *testing.T) {
	Convey("Resolve maps references onto the site tree", t, func() {
		cases := []struct {
			page, ref, want string
			ok              bool
		}{
			{"index.html", "News.html", "News.html", true},
			{"members/ada/ada.html", "../../assets/css/site.css", "assets/css/site.css", true},
			{"news/a.html", "../members/ada/ada.html#bio", "members/ada/ada.html", true},
			{"index.html", "Research.html?x=1", "Research.html", true},
			{"index.html", "https://example.org/x", "", false},
			{"index.html", "//cdn.example.org/x.js", "", false},
			{"index.html", "mailto:lab@example.org", "", false},
			{"index.html", "#top", "", false},
			{"index.html", "/abs.html", "", false},
			{"index.html", "", "", false},
		}
		for _, c := range cases {
			got, ok := Resolve(c.page, c.ref)
			So(ok, ShouldEqual, c.ok)
			So(got, ShouldEqual, c.want)
		}
	})
}

func TestCheck(t *testing.T) {
	Convey("Given a small site", t, func() {
		ctx := context.Background()
		root := t.TempDir()
		write(t, filepath.Join(root, "assets", "css", "site.css"), "body{}")
		write(t, filepath.Join(root, "index.html"), `<html><head><link rel="stylesheet" href="assets/css/site.css"></head>
<body><a href="members/ada/ada.html">Ada</a><a href="https://example.org">x</a><a href="missing.html">m</a>
<a href="missing.html">again</a></body></html>`)
		write(t, filepath.Join(root, "members", "ada", "ada.html"), `<html><body>
<a href="../../index.html">home</a><img src="../../website_files/images/ada.png"><a href="../../../outside.html">out</a>
</body></html>`)

		Convey("When checking", func() {
			broken, err := New(root).Check(ctx)

			Convey("Then each missing target should be reported once per page", func() {
				So(err, ShouldBeNil)
				So(broken, ShouldResemble, []Broken{
					{Page: "index.html", Ref: "missing.html"},
					{Page: "members/ada/ada.html", Ref: "../../../outside.html"},
					{Page: "members/ada/ada.html", Ref: "../../website_files/images/ada.png"},
				})
				So(broken[0].String(), ShouldEqual, "index.html -> missing.html")
			})
		})

		Convey("When every target exists", func() {
			write(t, filepath.Join(root, "missing.html"), "<html></html>")
			write(t, filepath.Join(root, "website_files", "images", "ada.png"), "png")
			write(t, filepath.Join(root, "members", "ada", "ada.html"), `<a href="../../index.html">home</a>`)
			broken, err := New(root).Check(ctx)

			So(err, ShouldBeNil)
			So(broken, ShouldBeEmpty)
		})

		Convey("When the root does not exist", func() {
			_, err := New(filepath.Join(root, "nope")).Check(ctx)

			So(errors.Is(err, ErrCheck), ShouldBeTrue)
		})
	})
}
