package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ArticleDateLayout is the MM-DD-YYYY layout used by article info.json files.
const ArticleDateLayout = "01-02-2006"

// CategoryNews is the article category rendered under News.html.
const CategoryNews = "News"

// Article is a research or news entry loaded from <articles>/**/info.json.
type Article struct {
	ID               string   `json:"article_id"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"short_description,omitempty"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags,omitempty"`
	Platforms        []string `json:"platforms"`
	RawDate          string   `json:"date"`
	CoverImage       string   `json:"cover_image"`
	CoverHeight      string   `json:"cover_image_height,omitempty"`
	CoverWidth       string   `json:"cover_image_width,omitempty"`
	Content          Content  `json:"content"`

	// Date is RawDate parsed with ArticleDateLayout.
	Date time.Time `json:"-"`
	// ImageName is the base name of CoverImage.
	ImageName string `json:"-"`
}

// HasTag reports whether the article carries tag, case-insensitively.
func (a Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// PublishedTo reports whether the article lists platform.
func (a Article) PublishedTo(platform string) bool {
	for _, p := range a.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// Block is one keyed entry of an article body such as "para1" or "img2".
type Block struct {
	Key   string
	Value string
}

// IsParagraph reports whether the block holds paragraph text.
func (b Block) IsParagraph() bool { return strings.Contains(b.Key, "para") }

// IsImage reports whether the block holds an image path.
func (b Block) IsImage() bool { return strings.Contains(b.Key, "img") }

// Content is an article body in source order.
type Content []Block

var errContentNotObject = errors.New("article content must be a JSON object")

// UnmarshalJSON decodes a JSON object keeping key order. Non-string values
// are kept as their raw JSON text.
func (c *Content) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errContentNotObject
	}
	var out Content
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read content key: %w", err)
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("read content %q: %w", key, err)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = string(raw)
		}
		out = append(out, Block{Key: key, Value: s})
	}
	*c = out
	return nil
}

// MarshalJSON encodes the blocks as an ordered JSON object.
func (c Content) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, blk := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(blk.Key)
		if err != nil {
			return nil, fmt.Errorf("encode content key: %w", err)
		}
		v, err := json.Marshal(blk.Value)
		if err != nil {
			return nil, fmt.Errorf("encode content %q: %w", blk.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a copy that can be modified without touching c.
func (c Content) Clone() Content {
	out := make(Content, len(c))
	copy(out, c)
	return out
}

// GalleryImage is one image entry of a gallery event.
type GalleryImage struct {
	Path    string `json:"image_path"`
	Caption string `json:"caption,omitempty"`

	// Scaled dimensions are filled in while rendering the gallery page.
	ScaledWidth  int `json:"-"`
	ScaledHeight int `json:"-"`
}

// GalleryEvent is website_data/content/gallery/<event>/info.json.
type GalleryEvent struct {
	ID          string         `json:"event_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Date        Date           `json:"date"`
	Images      []GalleryImage `json:"images"`

	// Dir is the directory holding info.json.
	Dir string `json:"-"`
}
