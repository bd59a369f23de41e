package models

import "time"

type User struct {
	ID           int    `gorm:"primary_key;autoIncrement" json:"id"`
	PasswordHash string `gorm:"not null" json:"-"` // json:"-" keeps the hash out of API responses
	Email        string `gorm:"unique;not null" json:"email"`
	Name         string `json:"name"`
}

// Application is a sibling collection sharing the record store. The
// insights routes never read or write it.
type Application struct {
	ID              string    `gorm:"primary_key" json:"id"`
	ReferenceNumber string    `gorm:"unique;not null" json:"reference_number"`
	FullName        string    `gorm:"not null" json:"full_name"`
	Email           string    `gorm:"not null;index" json:"email"`
	Phone           string    `json:"phone"`
	Status          string    `gorm:"default:'pending'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Article struct {
	ID                   string      `gorm:"primary_key" json:"id"`
	Title                string      `gorm:"not null" json:"title"`
	Slug                 string      `gorm:"uniqueIndex;not null" json:"slug"`
	Category             Category    `gorm:"not null;index" json:"category"`
	Summary              string      `gorm:"type:text;not null" json:"summary"`
	Excerpt              string      `gorm:"type:text" json:"excerpt,omitempty"`
	FeaturedImage        string      `gorm:"not null" json:"featured_image"`
	Content              string      `gorm:"type:text" json:"content"`
	Author               string      `gorm:"not null" json:"author"`
	AuthorBio            string      `gorm:"type:text" json:"author_bio,omitempty"`
	AuthorProfilePicture string      `json:"author_profile_picture,omitempty"`
	AuthorLinkedIn       string      `gorm:"column:author_linkedin" json:"author_linkedin,omitempty"`
	AuthorPhone          string      `json:"author_phone,omitempty"`
	AuthorEmail          string      `json:"author_email,omitempty"`
	ReadingTime          int         `gorm:"not null;default:1" json:"reading_time"`
	Published            bool        `gorm:"default:false;index" json:"published"`
	Featured             bool        `gorm:"default:false;index" json:"featured"`
	PublishedAt          *time.Time  `gorm:"index" json:"published_at"`
	CreatedAt            time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
	CreatedBy            string      `json:"created_by,omitempty"`
	ArticleReferences    []Reference `gorm:"type:text;serializer:json" json:"article_references"`
	CTAType              CTAType     `gorm:"column:cta_type;default:'contact'" json:"cta_type"`
	CTATitle             string      `gorm:"column:cta_title" json:"cta_title,omitempty"`
	CTADescription       string      `gorm:"column:cta_description;type:text" json:"cta_description,omitempty"`
	CTALink              string      `gorm:"column:cta_link" json:"cta_link,omitempty"`
	CTAButtonText        string      `gorm:"column:cta_button_text" json:"cta_button_text,omitempty"`
}

// Reference is a citation attached to an article. Order is significant.
type Reference struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	AccessedDate string `json:"accessed_date,omitempty"`
}

// DisplayExcerpt falls back to the summary when no excerpt was written.
func (a *Article) DisplayExcerpt() string {
	if a.Excerpt != "" {
		return a.Excerpt
	}
	return a.Summary
}
