// Package articles holds the typed operations the public pages and the
// admin editor run against the articles collection.
package articles

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"propertysite/models"
	"propertysite/store"
)

type Repository struct {
	client *store.Client
	now    func() time.Time
}

func NewRepository(client *store.Client) *Repository {
	return &Repository{client: client, now: time.Now}
}

func requireSession(ctx context.Context) (store.Session, error) {
	s, ok := store.SessionFrom(ctx)
	if !ok {
		return store.Session{}, ErrUnauthorized
	}
	return s, nil
}

// ListPublished returns published articles, newest publication first.
func (r *Repository) ListPublished(ctx context.Context) ([]models.Article, error) {
	var rows []models.Article
	err := r.client.From(store.Articles).
		Eq("published", true).
		Order("published_at", true).
		Select(ctx, &rows)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return rows, nil
}

// GetPublishedBySlug matches slug exactly, case included.
func (r *Repository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Article, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var row models.Article
	err := r.client.From(store.Articles).
		Eq("slug", slug).
		Eq("published", true).
		Single(ctx, &row)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &row, nil
}

// ListAll returns every article in any state, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Article, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	var rows []models.Article
	err := r.client.From(store.Articles).
		Order("created_at", true).
		Select(ctx, &rows)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return rows, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	return r.get(ctx, id)
}

func (r *Repository) get(ctx context.Context, id string) (*models.Article, error) {
	var row models.Article
	if err := r.client.From(store.Articles).Eq("id", id).Single(ctx, &row); err != nil {
		return nil, wrapStoreErr(err)
	}
	return &row, nil
}

// Create inserts draft and writes the store-assigned id and timestamps back
// into it.
func (r *Repository) Create(ctx context.Context, draft *models.Article) error {
	session, err := requireSession(ctx)
	if err != nil {
		return err
	}
	if err := Validate(draft); err != nil {
		return err
	}

	draft.ID = uuid.NewString()
	draft.CreatedBy = strconv.Itoa(session.UserID)
	if draft.CTAType == "" {
		draft.CTAType = models.CTAContact
	}
	if draft.ArticleReferences == nil {
		draft.ArticleReferences = []models.Reference{}
	}
	draft.PublishedAt = nil
	if draft.Published {
		ts := r.now()
		draft.PublishedAt = &ts
	}
	draft.CreatedAt = time.Time{}
	draft.UpdatedAt = time.Time{}

	if err := r.client.From(store.Articles).Insert(ctx, draft); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

// Update overwrites the editable fields of article id with patch and
// reloads patch from the store. id, created_at and created_by are never
// changed.
func (r *Repository) Update(ctx context.Context, id string, patch *models.Article) error {
	if _, err := requireSession(ctx); err != nil {
		return err
	}
	if err := Validate(patch); err != nil {
		return err
	}

	current, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	refs := patch.ArticleReferences
	if refs == nil {
		refs = []models.Reference{}
	}
	encodedRefs, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	ctaType := patch.CTAType
	if ctaType == "" {
		ctaType = models.CTAContact
	}

	values := map[string]any{
		"title":                  patch.Title,
		"slug":                   patch.Slug,
		"category":               patch.Category,
		"summary":                patch.Summary,
		"excerpt":                patch.Excerpt,
		"featured_image":         patch.FeaturedImage,
		"content":                patch.Content,
		"author":                 patch.Author,
		"author_bio":             patch.AuthorBio,
		"author_profile_picture": patch.AuthorProfilePicture,
		"author_linkedin":        patch.AuthorLinkedIn,
		"author_phone":           patch.AuthorPhone,
		"author_email":           patch.AuthorEmail,
		"reading_time":           patch.ReadingTime,
		"published":              patch.Published,
		"published_at":           r.publishedAt(current, patch.Published),
		"featured":               patch.Featured,
		"article_references":     string(encodedRefs),
		"cta_type":               ctaType,
		"cta_title":              patch.CTATitle,
		"cta_description":        patch.CTADescription,
		"cta_link":               patch.CTALink,
		"cta_button_text":        patch.CTAButtonText,
		"updated_at":             r.now(),
	}

	if _, err := r.client.From(store.Articles).Eq("id", id).Update(ctx, values); err != nil {
		return wrapStoreErr(err)
	}

	updated, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	*patch = *updated
	return nil
}

// publishedAt keeps an existing publication time, stamps a new one on the
// first publish and clears it on unpublish.
func (r *Repository) publishedAt(current *models.Article, published bool) any {
	if !published {
		return nil
	}
	if current.Published && current.PublishedAt != nil {
		return *current.PublishedAt
	}
	return r.now()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := requireSession(ctx); err != nil {
		return err
	}
	n, err := r.client.From(store.Articles).Eq("id", id).Delete(ctx)
	if err != nil {
		return wrapStoreErr(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished writes published and published_at and nothing else.
// Publishing an already published article keeps its original date.
func (r *Repository) SetPublished(ctx context.Context, id string, value bool) error {
	if _, err := requireSession(ctx); err != nil {
		return err
	}
	current, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	return r.setFields(ctx, id, map[string]any{
		"published":    value,
		"published_at": r.publishedAt(current, value),
	})
}

// SetFeatured writes featured and nothing else.
func (r *Repository) SetFeatured(ctx context.Context, id string, value bool) error {
	if _, err := requireSession(ctx); err != nil {
		return err
	}
	return r.setFields(ctx, id, map[string]any{"featured": value})
}

func (r *Repository) setFields(ctx context.Context, id string, values map[string]any) error {
	n, err := r.client.From(store.Articles).Eq("id", id).Update(ctx, values)
	if err != nil {
		return wrapStoreErr(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err means "nothing to show" rather than a
// failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
