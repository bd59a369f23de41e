package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"propertysite/articles"
	"propertysite/models"
	"propertysite/store"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Application{}, &models.Article{}))
	return db
}

func setupRepo(t *testing.T) (*articles.Repository, *store.Client) {
	client, err := store.NewClient(setupTestDB(t))
	require.NoError(t, err)
	return articles.NewRepository(client), client
}

func adminCtx() context.Context {
	return store.WithSession(context.Background(), store.Session{UserID: 1, Email: "admin@example.com"})
}

func fillForm(e *Editor, title string) {
	e.SetTitle(title)
	e.Form.Summary = "Short summary"
	e.Form.FeaturedImage = "/images/cover.jpg"
	e.Form.Content = "<p>Body</p>"
	e.Form.Author = "Sam Writer"
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"PBSA Market Update 2024!", "pbsa-market-update-2024"},
		{"Hello World", "hello-world"},
		{"Multiple   Spaces", "multiple-spaces"},
		{"Special@#Characters!", "special-characters"},
		{"Build to Rent: Q3 -- Outlook", "build-to-rent-q3-outlook"},
		{"Café Société", "cafe-societe"},
		{"  --Trimmed--  ", "trimmed"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateSlug(tt.input))
		})
	}
}

func TestEditor_StartsOnList(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)

	assert.Equal(t, StateList, e.State)
	assert.NotNil(t, e.Articles)
}

func TestEditor_NewUsesEmptyForm(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)

	e.New()

	assert.Equal(t, StateForm, e.State)
	assert.Equal(t, ModeCreate, e.Mode)
	assert.Empty(t, e.EditingID)
	assert.Equal(t, EmptyForm(), e.Form)
	assert.NotNil(t, e.Form.References)
}

func TestEditor_SetTitleOverwritesManualSlug(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()

	e.SetTitle("PBSA Market Update")
	e.SetSlug("my-custom-slug")
	assert.Equal(t, "my-custom-slug", e.Form.Slug)

	e.SetTitle("PBSA Market Update 2024")
	assert.Equal(t, "pbsa-market-update-2024", e.Form.Slug)
}

func TestEditor_References(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()

	e.AddReference()
	e.AddReference()
	e.AddReference()
	require.NoError(t, e.UpdateReference(0, "title", "First"))
	require.NoError(t, e.UpdateReference(1, "title", "Second"))
	require.NoError(t, e.UpdateReference(2, "title", "Third"))
	require.NoError(t, e.UpdateReference(2, "url", "https://example.com/3"))
	require.NoError(t, e.UpdateReference(2, "accessed_date", "2024-03-01"))

	require.NoError(t, e.RemoveReference(1))

	assert.Equal(t, []models.Reference{
		{Title: "First"},
		{Title: "Third", URL: "https://example.com/3", AccessedDate: "2024-03-01"},
	}, e.Form.References)

	assert.ErrorIs(t, e.RemoveReference(5), ErrReferenceOutOfRange)
	assert.ErrorIs(t, e.UpdateReference(-1, "title", "x"), ErrReferenceOutOfRange)
	assert.ErrorIs(t, e.UpdateReference(0, "publisher", "x"), ErrUnknownField)
}

func TestFormFromArticle_ProjectsEveryField(t *testing.T) {
	a := models.Article{
		ID:                   "abc",
		Title:                "Title",
		Slug:                 "title",
		Category:             models.CategoryRiskTransfer,
		Summary:              "Summary text",
		FeaturedImage:        "/img.jpg",
		Content:              "<p>x</p>",
		Author:               "Author",
		AuthorBio:            "Bio",
		AuthorProfilePicture: "/me.jpg",
		AuthorLinkedIn:       "https://www.linkedin.com/in/me",
		AuthorPhone:          "0123",
		AuthorEmail:          "me@example.com",
		ReadingTime:          7,
		Published:            true,
		Featured:             true,
		CTAType:              models.CTACustom,
		CTATitle:             "Talk to us",
		CTADescription:       "Any time",
		CTALink:              "/contact",
		CTAButtonText:        "Go",
	}

	form := FormFromArticle(a)

	assert.Equal(t, "Summary text", form.Excerpt)
	assert.NotNil(t, form.References)
	assert.Empty(t, form.References)

	back := form.Article()
	a.Excerpt = "Summary text"
	a.ArticleReferences = []models.Reference{}
	a.ID = ""
	assert.Equal(t, &a, back)
}

func TestEditor_SubmitCreateReturnsToList(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()
	fillForm(e, "PBSA Market Update 2024")

	saved, err := e.Submit(adminCtx())

	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "pbsa-market-update-2024", saved.Slug)
	assert.Equal(t, StateList, e.State)
	assert.Empty(t, e.Mode)
	require.Len(t, e.Articles, 1)
	assert.Equal(t, saved.ID, e.Articles[0].ID)
}

func TestEditor_SubmitInvalidKeepsFormAndWritesNothing(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()
	e.SetTitle("Missing everything else")

	_, err := e.Submit(adminCtx())

	var invalid *articles.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "summary")
	assert.Contains(t, invalid.Fields, "author")
	assert.Equal(t, StateForm, e.State)
	assert.Equal(t, "Missing everything else", e.Form.Title)

	rows, err := repo.ListAll(adminCtx())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEditor_SubmitEdit(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()
	fillForm(e, "Original title")
	e.AddReference()
	require.NoError(t, e.UpdateReference(0, "title", "ONS data"))
	created, err := e.Submit(adminCtx())
	require.NoError(t, err)

	e.Edit(*created)
	assert.Equal(t, ModeEdit, e.Mode)
	assert.Equal(t, created.ID, e.EditingID)
	e.SetTitle("Renamed title")

	updated, err := e.Submit(adminCtx())

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "renamed-title", updated.Slug)
	assert.Equal(t, []models.Reference{{Title: "ONS data"}}, updated.ArticleReferences)
	require.Len(t, e.Articles, 1)
	assert.Equal(t, "Renamed title", e.Articles[0].Title)
}

func TestEditor_SubmitDuplicateSlugKeepsForm(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()
	fillForm(e, "Same title")
	_, err := e.Submit(adminCtx())
	require.NoError(t, err)

	e.New()
	fillForm(e, "Same title")
	_, err = e.Submit(adminCtx())

	assert.ErrorIs(t, err, articles.ErrSlugTaken)
	assert.Equal(t, StateForm, e.State)
}

func TestEditor_MutationsNeedSession(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()
	fillForm(e, "No session")

	_, err := e.Submit(context.Background())
	assert.ErrorIs(t, err, articles.ErrUnauthorized)

	assert.ErrorIs(t, e.Delete(context.Background(), "x"), articles.ErrUnauthorized)
	assert.ErrorIs(t, e.TogglePublished(context.Background(), models.Article{ID: "x"}), articles.ErrUnauthorized)
	assert.ErrorIs(t, e.ToggleFeatured(context.Background(), models.Article{ID: "x"}), articles.ErrUnauthorized)
}

func TestEditor_SubmitOutsideForm(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)

	_, err := e.Submit(adminCtx())

	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestEditor_TogglesAndDelete(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()
	fillForm(e, "Toggle me")
	saved, err := e.Submit(adminCtx())
	require.NoError(t, err)

	require.NoError(t, e.TogglePublished(adminCtx(), e.Articles[0]))
	require.Len(t, e.Articles, 1)
	assert.True(t, e.Articles[0].Published)
	assert.NotNil(t, e.Articles[0].PublishedAt)

	require.NoError(t, e.ToggleFeatured(adminCtx(), e.Articles[0]))
	assert.True(t, e.Articles[0].Featured)

	require.NoError(t, e.TogglePublished(adminCtx(), e.Articles[0]))
	assert.False(t, e.Articles[0].Published)
	assert.Nil(t, e.Articles[0].PublishedAt)
	assert.True(t, e.Articles[0].Featured)

	require.NoError(t, e.Delete(adminCtx(), saved.ID))
	assert.Empty(t, e.Articles)

	assert.ErrorIs(t, e.Delete(adminCtx(), saved.ID), articles.ErrNotFound)
}

func TestEditor_Cancel(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(repo)
	e.New()
	fillForm(e, "Abandoned")

	e.Cancel()

	assert.Equal(t, StateList, e.State)
	assert.Empty(t, e.Form.Title)
}

type failingList struct {
	*articles.Repository
}

func (f failingList) ListAll(ctx context.Context) ([]models.Article, error) {
	return nil, errors.New("list unavailable")
}

func TestEditor_SubmitReportsReloadFailure(t *testing.T) {
	repo, _ := setupRepo(t)
	e := NewEditor(failingList{repo})
	e.New()
	fillForm(e, "Saved anyway")

	saved, err := e.Submit(adminCtx())

	require.Error(t, err)
	require.NotNil(t, saved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, StateList, e.State)
}
