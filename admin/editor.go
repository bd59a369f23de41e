package admin

import (
	"context"
	"errors"
	"fmt"

	"propertysite/articles"
	"propertysite/models"
	"propertysite/store"
)

type State string

const (
	StateList State = "list"
	StateForm State = "form"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

var (
	ErrNotEditing          = errors.New("editor is not showing a form")
	ErrReferenceOutOfRange = errors.New("reference index out of range")
	ErrUnknownField        = errors.New("unknown reference field")
)

// ArticleStore is what the editor needs from the article repository.
type ArticleStore interface {
	ListAll(ctx context.Context) ([]models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Create(ctx context.Context, draft *models.Article) error
	Update(ctx context.Context, id string, patch *models.Article) error
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, value bool) error
	SetFeatured(ctx context.Context, id string, value bool) error
}

type ArticleForm struct {
	Title                string             `json:"title"`
	Slug                 string             `json:"slug"`
	Category             models.Category    `json:"category"`
	Summary              string             `json:"summary"`
	Excerpt              string             `json:"excerpt"`
	FeaturedImage        string             `json:"featured_image"`
	Content              string             `json:"content"`
	Author               string             `json:"author"`
	AuthorBio            string             `json:"author_bio"`
	AuthorProfilePicture string             `json:"author_profile_picture"`
	AuthorLinkedIn       string             `json:"author_linkedin"`
	AuthorPhone          string             `json:"author_phone"`
	AuthorEmail          string             `json:"author_email"`
	ReadingTime          int                `json:"reading_time"`
	Published            bool               `json:"published"`
	Featured             bool               `json:"featured"`
	References           []models.Reference `json:"article_references"`
	CTAType              models.CTAType     `json:"cta_type"`
	CTATitle             string             `json:"cta_title"`
	CTADescription       string             `json:"cta_description"`
	CTALink              string             `json:"cta_link"`
	CTAButtonText        string             `json:"cta_button_text"`
}

// EmptyForm is the form shown for a new article.
func EmptyForm() ArticleForm {
	return ArticleForm{
		Category:    models.CategoryPBSA,
		ReadingTime: 5,
		References:  []models.Reference{},
		CTAType:     models.CTAContact,
	}
}

// FormFromArticle projects every stored field into the form.
func FormFromArticle(a models.Article) ArticleForm {
	form := ArticleForm{
		Title:                a.Title,
		Slug:                 a.Slug,
		Category:             a.Category,
		Summary:              a.Summary,
		Excerpt:              a.DisplayExcerpt(),
		FeaturedImage:        a.FeaturedImage,
		Content:              a.Content,
		Author:               a.Author,
		AuthorBio:            a.AuthorBio,
		AuthorProfilePicture: a.AuthorProfilePicture,
		AuthorLinkedIn:       a.AuthorLinkedIn,
		AuthorPhone:          a.AuthorPhone,
		AuthorEmail:          a.AuthorEmail,
		ReadingTime:          a.ReadingTime,
		Published:            a.Published,
		Featured:             a.Featured,
		References:           append([]models.Reference{}, a.ArticleReferences...),
		CTAType:              a.CTAType,
		CTATitle:             a.CTATitle,
		CTADescription:       a.CTADescription,
		CTALink:              a.CTALink,
		CTAButtonText:        a.CTAButtonText,
	}
	if form.CTAType == "" {
		form.CTAType = models.CTAContact
	}
	return form
}

func (f ArticleForm) Article() *models.Article {
	return &models.Article{
		Title:                f.Title,
		Slug:                 f.Slug,
		Category:             f.Category,
		Summary:              f.Summary,
		Excerpt:              f.Excerpt,
		FeaturedImage:        f.FeaturedImage,
		Content:              f.Content,
		Author:               f.Author,
		AuthorBio:            f.AuthorBio,
		AuthorProfilePicture: f.AuthorProfilePicture,
		AuthorLinkedIn:       f.AuthorLinkedIn,
		AuthorPhone:          f.AuthorPhone,
		AuthorEmail:          f.AuthorEmail,
		ReadingTime:          f.ReadingTime,
		Published:            f.Published,
		Featured:             f.Featured,
		ArticleReferences:    append([]models.Reference{}, f.References...),
		CTAType:              f.CTAType,
		CTATitle:             f.CTATitle,
		CTADescription:       f.CTADescription,
		CTALink:              f.CTALink,
		CTAButtonText:        f.CTAButtonText,
	}
}

// Editor is the admin screen: either the article list or a create/edit
// form over it.
type Editor struct {
	store ArticleStore

	State     State            `json:"state"`
	Mode      Mode             `json:"mode,omitempty"`
	EditingID string           `json:"editing_id,omitempty"`
	Form      ArticleForm      `json:"form"`
	Articles  []models.Article `json:"articles"`
}

func NewEditor(s ArticleStore) *Editor {
	return &Editor{store: s, State: StateList, Articles: []models.Article{}}
}

func guard(ctx context.Context) error {
	if _, ok := store.SessionFrom(ctx); !ok {
		return articles.ErrUnauthorized
	}
	return nil
}

func (e *Editor) New() {
	e.State = StateForm
	e.Mode = ModeCreate
	e.EditingID = ""
	e.Form = EmptyForm()
}

func (e *Editor) Edit(a models.Article) {
	e.State = StateForm
	e.Mode = ModeEdit
	e.EditingID = a.ID
	e.Form = FormFromArticle(a)
}

// Cancel drops the form and returns to the list.
func (e *Editor) Cancel() {
	e.State = StateList
	e.Mode = ""
	e.EditingID = ""
	e.Form = ArticleForm{}
}

// SetTitle regenerates the slug on every title change, including after a
// manual slug edit.
func (e *Editor) SetTitle(title string) {
	e.Form.Title = title
	e.Form.Slug = GenerateSlug(title)
}

func (e *Editor) SetSlug(slug string) {
	e.Form.Slug = slug
}

func (e *Editor) AddReference() {
	e.Form.References = append(e.Form.References, models.Reference{})
}

// RemoveReference deletes entry i and keeps the order of the rest.
func (e *Editor) RemoveReference(i int) error {
	if i < 0 || i >= len(e.Form.References) {
		return ErrReferenceOutOfRange
	}
	refs := make([]models.Reference, 0, len(e.Form.References)-1)
	refs = append(refs, e.Form.References[:i]...)
	e.Form.References = append(refs, e.Form.References[i+1:]...)
	return nil
}

func (e *Editor) UpdateReference(i int, field, value string) error {
	if i < 0 || i >= len(e.Form.References) {
		return ErrReferenceOutOfRange
	}
	ref := &e.Form.References[i]
	switch field {
	case "title":
		ref.Title = value
	case "url":
		ref.URL = value
	case "accessed_date":
		ref.AccessedDate = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Submit validates the form, creates or updates the article, then returns
// to the list and reloads it. A validation failure leaves the form open
// and writes nothing. If the write succeeds but the reload fails, the saved
// article is returned along with the reload error.
func (e *Editor) Submit(ctx context.Context) (*models.Article, error) {
	if err := guard(ctx); err != nil {
		return nil, err
	}
	if e.State != StateForm {
		return nil, ErrNotEditing
	}

	article := e.Form.Article()
	if err := articles.Validate(article); err != nil {
		return nil, err
	}

	var err error
	if e.Mode == ModeEdit {
		err = e.store.Update(ctx, e.EditingID, article)
	} else {
		err = e.store.Create(ctx, article)
	}
	if err != nil {
		return nil, err
	}

	e.Cancel()
	if err := e.Refresh(ctx); err != nil {
		return article, fmt.Errorf("reloading articles: %w", err)
	}
	return article, nil
}

func (e *Editor) Refresh(ctx context.Context) error {
	rows, err := e.store.ListAll(ctx)
	if err != nil {
		return err
	}
	e.Articles = rows
	return nil
}

func (e *Editor) TogglePublished(ctx context.Context, a models.Article) error {
	if err := guard(ctx); err != nil {
		return err
	}
	if err := e.store.SetPublished(ctx, a.ID, !a.Published); err != nil {
		return err
	}
	return e.Refresh(ctx)
}

func (e *Editor) ToggleFeatured(ctx context.Context, a models.Article) error {
	if err := guard(ctx); err != nil {
		return err
	}
	if err := e.store.SetFeatured(ctx, a.ID, !a.Featured); err != nil {
		return err
	}
	return e.Refresh(ctx)
}

func (e *Editor) Delete(ctx context.Context, id string) error {
	if err := guard(ctx); err != nil {
		return err
	}
	if err := e.store.Delete(ctx, id); err != nil {
		return err
	}
	return e.Refresh(ctx)
}
