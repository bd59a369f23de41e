package insights

import (
	"regexp"
	"strings"

	"propertysite/models"
)

const (
	ListingPath          = "/insights"
	DefaultCategoryColor = "#6b7280"
)

var categoryColors = map[models.Category]string{
	models.CategoryPBSA:          "#2563eb",
	models.CategorySocialHousing: "#16a34a",
	models.CategoryBuildToRent:   "#9333ea",
	models.CategoryRiskTransfer:  "#dc2626",
	models.CategoryNews:          "#ea580c",
}

func ArticlePath(slug string) string {
	return ListingPath + "/" + slug
}

// CategoryColor returns the badge colour for category, or the neutral
// default for anything outside the known set.
func CategoryColor(category models.Category) string {
	if color, ok := categoryColors[category]; ok {
		return color
	}
	return DefaultCategoryColor
}

// Country sites such as uk.linkedin.com or de.linkedin.com.
var regionalLinkedIn = regexp.MustCompile(`(?i)^(https?://)[a-z]{2}\.linkedin\.com(/.*)?$`)

// NormalizeLinkedIn rewrites regional LinkedIn hosts to www.linkedin.com
// and keeps the path. Other URLs come back unchanged.
func NormalizeLinkedIn(profile string) string {
	profile = strings.TrimSpace(profile)
	m := regionalLinkedIn.FindStringSubmatch(profile)
	if m == nil {
		return profile
	}
	return m[1] + "www.linkedin.com" + m[2]
}

type CTA struct {
	Heading    string `json:"heading"`
	Body       string `json:"body"`
	LinkLabel  string `json:"link_label"`
	LinkTarget string `json:"link_target"`
	IsExternal bool   `json:"is_external"`
}

var defaultCTAs = map[models.CTAType]CTA{
	models.CTAContact: {
		Heading:    "Ready to discuss your investment strategy?",
		Body:       "Speak to our team about opportunities across PBSA, social housing and build to rent.",
		LinkLabel:  "Get in touch",
		LinkTarget: "/contact",
	},
	models.CTAServices: {
		Heading:    "See how we can help",
		Body:       "From sourcing to asset management, explore the services behind our investment approach.",
		LinkLabel:  "Explore our services",
		LinkTarget: "/services",
	},
	models.CTAPip: {
		Heading:    "Join the Property Investment Programme",
		Body:       "Access curated, income-producing opportunities with institutional-grade due diligence.",
		LinkLabel:  "Learn about PIP",
		LinkTarget: "/pip",
	},
}

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// ResolveCTA picks the closing call to action. Only the custom variant
// reads the cta_* fields; blank custom fields fall back to the contact copy.
func ResolveCTA(a *models.Article) CTA {
	if a.CTAType != models.CTACustom {
		if cta, ok := defaultCTAs[a.CTAType]; ok {
			return cta
		}
		return defaultCTAs[models.CTAContact]
	}

	cta := defaultCTAs[models.CTAContact]
	if a.CTATitle != "" {
		cta.Heading = a.CTATitle
	}
	if a.CTADescription != "" {
		cta.Body = a.CTADescription
	}
	if a.CTAButtonText != "" {
		cta.LinkLabel = a.CTAButtonText
	}
	if link := strings.TrimSpace(a.CTALink); link != "" {
		// "//host" and "/\host" leave the site just like an absolute URL.
		if schemePrefix.MatchString(link) || strings.HasPrefix(link, "//") || strings.HasPrefix(link, `/\`) {
			cta.LinkTarget = link
			cta.IsExternal = true
		} else {
			if !strings.HasPrefix(link, "/") {
				link = "/" + link
			}
			cta.LinkTarget = link
		}
	}
	return cta
}

type AuthorView struct {
	Name           string `json:"name"`
	Bio            string `json:"bio,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	LinkedIn       string `json:"linkedin,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
}

type DetailView struct {
	Title          string             `json:"title"`
	Slug           string             `json:"slug"`
	CanonicalURL   string             `json:"canonical_url"`
	Category       models.Category    `json:"category"`
	CategoryColor  string             `json:"category_color"`
	Summary        string             `json:"summary"`
	Excerpt        string             `json:"excerpt"`
	FeaturedImage  string             `json:"featured_image"`
	ContentHTML    string             `json:"content_html"`
	WordCount      int                `json:"word_count"`
	ReadingTime    int                `json:"reading_time"`
	PublishedAt    string             `json:"published_at,omitempty"`
	Author         AuthorView         `json:"author"`
	References     []models.Reference `json:"references"`
	CTA            CTA                `json:"cta"`
	Share          ShareLinks         `json:"share"`
	StructuredData []any              `json:"structured_data"`
}

// BuildDetail projects a published article into everything the detail page
// renders. It has no side effects.
func BuildDetail(a *models.Article, site SiteInfo, userAgent string) DetailView {
	contentHTML, text := RenderContent(a.Content)
	canonical := site.URL(ArticlePath(a.Slug))
	words := WordCount(text)

	refs := a.ArticleReferences
	if refs == nil {
		refs = []models.Reference{}
	}

	view := DetailView{
		Title:         a.Title,
		Slug:          a.Slug,
		CanonicalURL:  canonical,
		Category:      a.Category,
		CategoryColor: CategoryColor(a.Category),
		Summary:       a.Summary,
		Excerpt:       a.DisplayExcerpt(),
		FeaturedImage: a.FeaturedImage,
		ContentHTML:   contentHTML,
		WordCount:     words,
		ReadingTime:   a.ReadingTime,
		Author: AuthorView{
			Name:           a.Author,
			Bio:            a.AuthorBio,
			ProfilePicture: a.AuthorProfilePicture,
			LinkedIn:       NormalizeLinkedIn(a.AuthorLinkedIn),
			Phone:          a.AuthorPhone,
			Email:          a.AuthorEmail,
		},
		References: refs,
		CTA:        ResolveCTA(a),
		Share:      NewShareLinks(canonical, userAgent),
		StructuredData: []any{
			ArticleSchema(a, site, words),
			BreadcrumbSchema(a, site),
		},
	}
	if a.PublishedAt != nil {
		view.PublishedAt = a.PublishedAt.Format("2 January 2006")
	}
	return view
}
