package insights

import (
	"fmt"

	"github.com/samber/lo"

	"propertysite/models"
)

const (
	AllCategories = "All"
	RowSize       = 3
	DefaultRows   = 2
	DefaultReveal = DefaultRows * RowSize
)

// Listing is the reader's selection state on the insights index: which
// category tab is active and how many cards each group shows.
type Listing struct {
	Selected string
	Reveal   int
}

func NewListing() Listing {
	return Listing{Selected: AllCategories, Reveal: DefaultReveal}
}

// Select switches category and resets the reveal counter.
func (l *Listing) Select(category string) {
	if category == "" {
		category = AllCategories
	}
	l.Selected = category
	l.Reveal = DefaultReveal
}

// LoadMore reveals one more row in both groups.
func (l *Listing) LoadMore() {
	l.Reveal += RowSize
}

// Categories returns "All" followed by each category in first-seen order.
func Categories(collection []models.Article) []string {
	seen := lo.Uniq(lo.Map(collection, func(a models.Article, _ int) string {
		return string(a.Category)
	}))
	return append([]string{AllCategories}, lo.Without(seen, AllCategories)...)
}

func (l Listing) Filter(collection []models.Article) []models.Article {
	if l.Selected == AllCategories || l.Selected == "" {
		return collection
	}
	return lo.Filter(collection, func(a models.Article, _ int) bool {
		return string(a.Category) == l.Selected
	})
}

func Featured(filtered []models.Article) []models.Article {
	return lo.Filter(filtered, func(a models.Article, _ int) bool { return a.Featured })
}

func Regular(filtered []models.Article) []models.Article {
	return lo.Filter(filtered, func(a models.Article, _ int) bool { return !a.Featured })
}

func (l Listing) truncate(group []models.Article) []models.Article {
	if l.Reveal < 0 {
		return nil
	}
	return lo.Subset(group, 0, uint(l.Reveal))
}

type ListingView struct {
	Categories      []string      `json:"categories"`
	Selected        string        `json:"selected"`
	Reveal          int           `json:"reveal"`
	ShowFeatured    bool          `json:"show_featured"`
	Featured        []ArticleCard `json:"featured,omitempty"`
	Regular         []ArticleCard `json:"regular"`
	HasMoreFeatured bool          `json:"has_more_featured"`
	HasMoreRegular  bool          `json:"has_more_regular"`
	EmptyMessage    string        `json:"empty_message,omitempty"`
}

// ArticleCard is what the index shows for one article.
type ArticleCard struct {
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	URL           string          `json:"url"`
	Category      models.Category `json:"category"`
	CategoryColor string          `json:"category_color"`
	Excerpt       string          `json:"excerpt"`
	FeaturedImage string          `json:"featured_image"`
	Author        string          `json:"author"`
	ReadingTime   int             `json:"reading_time"`
	PublishedAt   string          `json:"published_at,omitempty"`
}

func NewArticleCard(a models.Article) ArticleCard {
	card := ArticleCard{
		Title:         a.Title,
		Slug:          a.Slug,
		URL:           ArticlePath(a.Slug),
		Category:      a.Category,
		CategoryColor: CategoryColor(a.Category),
		Excerpt:       a.DisplayExcerpt(),
		FeaturedImage: a.FeaturedImage,
		Author:        a.Author,
		ReadingTime:   a.ReadingTime,
	}
	if a.PublishedAt != nil {
		card.PublishedAt = a.PublishedAt.Format("2 January 2006")
	}
	return card
}

// Build derives the whole index view from the published collection.
func (l Listing) Build(collection []models.Article) ListingView {
	filtered := l.Filter(collection)
	featured := Featured(filtered)
	regular := Regular(filtered)

	view := ListingView{
		Categories:      Categories(collection),
		Selected:        l.Selected,
		Reveal:          l.Reveal,
		ShowFeatured:    len(featured) > 0,
		Regular:         lo.Map(l.truncate(regular), cardOf),
		HasMoreFeatured: len(featured) > l.Reveal,
		HasMoreRegular:  len(regular) > l.Reveal,
	}
	if view.ShowFeatured {
		view.Featured = lo.Map(l.truncate(featured), cardOf)
	}
	if len(filtered) == 0 {
		view.EmptyMessage = EmptyMessage(l.Selected)
	}
	return view
}

func cardOf(a models.Article, _ int) ArticleCard { return NewArticleCard(a) }

func EmptyMessage(selected string) string {
	if selected == "" || selected == AllCategories {
		return "No articles published yet. Check back soon for new insights."
	}
	return fmt.Sprintf("No articles in %s yet.", selected)
}
