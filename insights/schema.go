package insights

import (
	"fmt"
	"strings"
	"time"

	"propertysite/models"
)

// SiteInfo is the publisher identity used for canonical URLs and
// structured data.
type SiteInfo struct {
	Name     string
	BaseURL  string
	LogoPath string
}

// URL makes path absolute against the site base. Absolute URLs pass
// through.
func (s SiteInfo) URL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(s.BaseURL, "/") + path
}

type schemaPerson struct {
	Type        string `json:"@type"`
	Name        string `json:"name"`
	JobTitle    string `json:"jobTitle"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

type schemaLogo struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

type schemaOrganization struct {
	Type string     `json:"@type"`
	Name string     `json:"name"`
	Logo schemaLogo `json:"logo"`
}

type schemaPage struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

type ArticleLD struct {
	Context          string             `json:"@context"`
	Type             string             `json:"@type"`
	Headline         string             `json:"headline"`
	Description      string             `json:"description"`
	Image            string             `json:"image"`
	DatePublished    string             `json:"datePublished,omitempty"`
	DateModified     string             `json:"dateModified"`
	Author           schemaPerson       `json:"author"`
	Publisher        schemaOrganization `json:"publisher"`
	MainEntityOfPage schemaPage         `json:"mainEntityOfPage"`
	ArticleSection   string             `json:"articleSection"`
	Keywords         string             `json:"keywords"`
	WordCount        int                `json:"wordCount"`
	TimeRequired     string             `json:"timeRequired"`
}

const authorJobTitle = "Property Investment Specialist"

// ArticleSchema is the schema.org Article block for the detail page.
func ArticleSchema(a *models.Article, site SiteInfo, wordCount int) ArticleLD {
	ld := ArticleLD{
		Context:      "https://schema.org",
		Type:         "Article",
		Headline:     a.Title,
		Description:  a.DisplayExcerpt(),
		Image:        site.URL(a.FeaturedImage),
		DateModified: a.UpdatedAt.UTC().Format(time.RFC3339),
		Author: schemaPerson{
			Type:        "Person",
			Name:        a.Author,
			JobTitle:    authorJobTitle,
			URL:         NormalizeLinkedIn(a.AuthorLinkedIn),
			Description: a.AuthorBio,
		},
		Publisher: schemaOrganization{
			Type: "Organization",
			Name: site.Name,
			Logo: schemaLogo{Type: "ImageObject", URL: site.URL(site.LogoPath)},
		},
		MainEntityOfPage: schemaPage{Type: "WebPage", ID: site.URL(ArticlePath(a.Slug))},
		ArticleSection:   string(a.Category),
		Keywords:         strings.Join([]string{string(a.Category), "property investment", "UK real estate"}, ", "),
		WordCount:        wordCount,
		TimeRequired:     fmt.Sprintf("PT%dM", a.ReadingTime),
	}
	if a.PublishedAt != nil {
		ld.DatePublished = a.PublishedAt.UTC().Format(time.RFC3339)
	}
	return ld
}

type breadcrumbItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type BreadcrumbLD struct {
	Context         string           `json:"@context"`
	Type            string           `json:"@type"`
	ItemListElement []breadcrumbItem `json:"itemListElement"`
}

func BreadcrumbSchema(a *models.Article, site SiteInfo) BreadcrumbLD {
	crumbs := []struct{ name, path string }{
		{"Home", "/"},
		{"Insights", ListingPath},
		{a.Title, ArticlePath(a.Slug)},
	}
	items := make([]breadcrumbItem, 0, len(crumbs))
	for i, c := range crumbs {
		items = append(items, breadcrumbItem{
			Type:     "ListItem",
			Position: i + 1,
			Name:     c.name,
			Item:     site.URL(c.path),
		})
	}
	return BreadcrumbLD{
		Context:         "https://schema.org",
		Type:            "BreadcrumbList",
		ItemListElement: items,
	}
}
