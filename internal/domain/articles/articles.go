// Package articles splits, orders and prepares article records for the
// research and news pages.
package articles

import (
	"sort"
	"strings"

	"github.com/okian/labsite/internal/domain/model"
)

// DefaultUnknownTagColor is used for tags without a configured colour.
const DefaultUnknownTagColor = "#6c757d"

// Split returns news (category News or tagged "news", newest first) and
// research (every other category, by category then newest first). An
// article tagged "news" in a research category appears in both.
func Split(all []model.Article) ([]model.Article, []model.Article) {
	var news, research []model.Article
	for _, a := range all {
		if a.Category == model.CategoryNews || a.HasTag("news") {
			news = append(news, a)
		}
		if a.Category != model.CategoryNews {
			research = append(research, a)
		}
	}
	sort.SliceStable(news, func(i, j int) bool {
		return news[i].Date.After(news[j].Date)
	})
	sortByCategoryThenNewest(research)
	return news, research
}

// LatestPerCategory returns the newest article of each category, ordered by
// category name.
func LatestPerCategory(all []model.Article) []model.Article {
	sorted := make([]model.Article, len(all))
	copy(sorted, all)
	sortByCategoryThenNewest(sorted)

	var out []model.Article
	for i, a := range sorted {
		if i == 0 || a.Category != sorted[i-1].Category {
			out = append(out, a)
		}
	}
	return out
}

// Categories lists the distinct categories of research articles in order.
func Categories(research []model.Article) []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range research {
		if a.Category == model.CategoryNews || seen[a.Category] {
			continue
		}
		seen[a.Category] = true
		out = append(out, a.Category)
	}
	sort.Strings(out)
	return out
}

// InCategory filters articles by category.
func InCategory(all []model.Article, category string) []model.Article {
	var out []model.Article
	for _, a := range all {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// ByMember returns the articles whose content mentions id as [id].
func ByMember(all []model.Article, id model.MemberID) []model.Article {
	needle := "[" + string(id) + "]"
	var out []model.Article
	for _, a := range all {
		for _, b := range a.Content {
			if strings.Contains(b.Value, needle) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func sortByCategoryThenNewest(list []model.Article) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}
		return list[i].Date.After(list[j].Date)
	})
}

// TagPalette maps lower-case tag names to CSS colours.
type TagPalette map[string]string

// DefaultTagColors is the stock palette.
func DefaultTagColors() TagPalette {
	return TagPalette{
		"paper":            "#FF6B6B",
		"poster":           "#4ECDC4",
		"talk":             "#45B7D1",
		"award":            "#96CEB4",
		"new team member":  "#FFBE0B",
		"phd":              "#9B5DE5",
		"conference":       "#FF006E",
		"undergraduate":    "#8338EC",
		"event":            "#3A86FF",
		"achievement":      "#FB5607",
		"astrophysics":     "#2EC4B6",
		"machine learning": "#FF9F1C",
		"software":         "#E71D36",
		"research":         "#011627",
		"news":             "#41EAD4",
	}
}

// Color returns the colour of tag, ignoring case.
func (p TagPalette) Color(tag string) string {
	if c, ok := p[strings.ToLower(tag)]; ok {
		return c
	}
	return DefaultUnknownTagColor
}
