package articles

import (
	"regexp"
	"strings"

	"propertysite/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validate checks the fields the editor marks as required. It returns nil
// or a *ValidationError.
func Validate(a *models.Article) error {
	fields := map[string]string{}

	if strings.TrimSpace(a.Title) == "" {
		fields["title"] = "title is required"
	}
	if a.Slug == "" {
		fields["slug"] = "slug is required"
	} else if !slugRegex.MatchString(a.Slug) {
		fields["slug"] = "slug must be lowercase letters, digits and single dashes"
	}
	if a.Category == "" {
		fields["category"] = "category is required"
	} else if !a.Category.Valid() {
		fields["category"] = "unknown category"
	}
	if strings.TrimSpace(a.Summary) == "" {
		fields["summary"] = "summary is required"
	}
	if strings.TrimSpace(a.FeaturedImage) == "" {
		fields["featured_image"] = "featured image is required"
	}
	if strings.TrimSpace(a.Author) == "" {
		fields["author"] = "author is required"
	}
	if a.ReadingTime < 1 {
		fields["reading_time"] = "reading time must be at least 1 minute"
	}
	if a.CTAType != "" && !a.CTAType.Valid() {
		fields["cta_type"] = "unknown call to action"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
