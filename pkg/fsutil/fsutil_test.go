package fsutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCopyTree(t *testing.T) {
	Convey("Given a source tree", t, func() {
		src := t.TempDir()
		dst := filepath.Join(t.TempDir(), "out")
		So(WriteFile(filepath.Join(src, "css", "site.css"), []byte("body{}")), ShouldBeNil)
		So(WriteFile(filepath.Join(src, "logo.png"), []byte("png")), ShouldBeNil)
		So(os.MkdirAll(filepath.Join(src, "empty"), 0o755), ShouldBeNil)

		Convey("When copying it", func() {
			n, err := CopyTree(context.Background(), src, dst)

			Convey("Then every file and directory should be mirrored", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
				b, readErr := os.ReadFile(filepath.Join(dst, "css", "site.css"))
				So(readErr, ShouldBeNil)
				So(string(b), ShouldEqual, "body{}")
				So(Exists(filepath.Join(dst, "empty")), ShouldBeTrue)
			})
		})

		Convey("When the source does not exist", func() {
			_, err := CopyTree(context.Background(), filepath.Join(src, "missing"), dst)
			So(err, ShouldNotBeNil)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := CopyTree(ctx, src, dst)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCopyFile(t *testing.T) {
	Convey("Given a missing source file", t, func() {
		err := CopyFile(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "x"))
		So(err, ShouldNotBeNil)
	})
}
