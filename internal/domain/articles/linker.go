package articles

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"
	"unicode"

	"github.com/okian/labsite/internal/domain/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var mentionPattern = regexp.MustCompile(`\[([\p{L}\p{N}_]+)\]`)

// Linker turns [member_id] mentions into member links or names.
type Linker struct {
	members   map[model.MemberID]model.MemberInfo
	isCurrent func(model.MemberID) bool
}

// NewLinker creates a linker over the loaded members. isCurrent decides
// which members get a link to their page.
func NewLinker(members map[model.MemberID]model.MemberInfo, isCurrent func(model.MemberID) bool) *Linker {
	if isCurrent == nil {
		isCurrent = func(model.MemberID) bool { return false }
	}
	return &Linker{members: members, isCurrent: isCurrent}
}

// Link rewrites every mention in text. Current members become anchors to
// ../members/<id>/<id>.html, other known members their full name, and
// unknown ids a title-cased version of the id.
func (l *Linker) Link(text string) string {
	return mentionPattern.ReplaceAllStringFunc(text, func(m string) string {
		id := model.MemberID(mentionPattern.FindStringSubmatch(m)[1])
		info, ok := l.members[id]
		if !ok {
			return titleCase(strings.ReplaceAll(string(id), "_", " "))
		}
		name := html.EscapeString(info.FullName())
		if l.isCurrent(id) {
			return `<a href="../members/` + string(id) + "/" + string(id) + `.html" target="_blank">` + name + "</a>"
		}
		return name
	})
}

// LinkNews returns copies of the articles with mentions linked in every
// paragraph block.
func (l *Linker) LinkNews(news []model.Article) []model.Article {
	out := make([]model.Article, len(news))
	for i, a := range news {
		a.Content = a.Content.Clone()
		for j, b := range a.Content {
			if b.IsParagraph() {
				a.Content[j].Value = l.Link(b.Value)
			}
		}
		out[i] = a
	}
	return out
}

// titleCase upper-cases every cased letter that does not follow another
// cased letter and lower-cases the rest, so digits start a new word too.
func titleCase(s string) string {
	var b strings.Builder
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case !cased:
			b.WriteRune(r)
		case prevCased:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToTitle(r))
		}
		prevCased = cased
	}
	return b.String()
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// Paragraph renders paragraph text as HTML. Markdown emphasis and links are
// supported and inline HTML produced by Link is kept. Text that fails to
// render is escaped instead.
func Paragraph(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text)) //nolint:gosec // escaped above
	}
	return template.HTML(strings.TrimSpace(buf.String())) //nolint:gosec // article text is trusted repo content
}
