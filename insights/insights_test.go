package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertysite/articles"
	"propertysite/cache"
	"propertysite/models"
)

type fakeSource struct {
	published []models.Article
	err       error
	bySlug    int
}

func (f *fakeSource) ListPublished(ctx context.Context) ([]models.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.published, nil
}

func (f *fakeSource) GetPublishedBySlug(ctx context.Context, slug string) (*models.Article, error) {
	f.bySlug++
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.published {
		if f.published[i].Slug == slug && f.published[i].Published {
			return &f.published[i], nil
		}
	}
	return nil, articles.ErrNotFound
}

func setupTestRouter(source ArticleSource, c *cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewInsightsModule(source, testSite, c, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	req.Header.Set("User-Agent", desktopUA)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIndex_ListsPublished(t *testing.T) {
	source := &fakeSource{published: append(
		makeArticles(models.CategoryPBSA, true, 1),
		makeArticles(models.CategoryNews, false, 8)...,
	)}
	router := setupTestRouter(source, nil)

	w := get(router, "/insights")

	require.Equal(t, http.StatusOK, w.Code)
	var view ListingView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, []string{"All", "PBSA", "News"}, view.Categories)
	assert.True(t, view.ShowFeatured)
	assert.Len(t, view.Featured, 1)
	assert.Len(t, view.Regular, 6)
	assert.True(t, view.HasMoreRegular)
}

func TestIndex_CategoryAndLoadMore(t *testing.T) {
	source := &fakeSource{published: append(
		makeArticles(models.CategoryPBSA, false, 3),
		makeArticles(models.CategoryNews, false, 12)...,
	)}
	router := setupTestRouter(source, nil)

	w := get(router, "/insights?category=News&more=1")

	var view ListingView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "News", view.Selected)
	assert.Len(t, view.Regular, 9)
	assert.False(t, view.ShowFeatured)
}

func TestIndex_FetchFailureShowsEmptyState(t *testing.T) {
	router := setupTestRouter(&fakeSource{err: articles.ErrTransport}, nil)

	w := get(router, "/insights")

	require.Equal(t, http.StatusOK, w.Code)
	var view ListingView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.NotEmpty(t, view.EmptyMessage)
	assert.Empty(t, view.Regular)
}

func TestArticle_Success(t *testing.T) {
	source := &fakeSource{published: []models.Article{*publishedArticle()}}
	router := setupTestRouter(source, nil)

	w := get(router, "/insights/pbsa-market-update-2024")

	require.Equal(t, http.StatusOK, w.Code)
	var view DetailView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "PBSA Market Update 2024", view.Title)
	assert.Equal(t, "https://www.linkedin.com/in/alexmorgan", view.Author.LinkedIn)
}

func TestArticle_UnpublishedRedirects(t *testing.T) {
	draft := *publishedArticle()
	draft.Published = false
	router := setupTestRouter(&fakeSource{published: []models.Article{draft}}, nil)

	w := get(router, "/insights/pbsa-market-update-2024")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/insights", w.Header().Get("Location"))
}

func TestArticle_SlugIsCaseSensitive(t *testing.T) {
	router := setupTestRouter(&fakeSource{published: []models.Article{*publishedArticle()}}, nil)

	w := get(router, "/insights/PBSA-Market-Update-2024")

	assert.Equal(t, http.StatusFound, w.Code)
}

func TestArticle_TransportFailureRedirects(t *testing.T) {
	router := setupTestRouter(&fakeSource{err: errors.New("connection refused")}, nil)

	w := get(router, "/insights/anything")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/insights", w.Header().Get("Location"))
}

func TestArticle_CachedAfterFirstRender(t *testing.T) {
	source := &fakeSource{published: []models.Article{*publishedArticle()}}
	c := cache.New(t.TempDir(), time.Hour)
	router := setupTestRouter(source, c)

	first := get(router, "/insights/pbsa-market-update-2024")
	second := get(router, "/insights/pbsa-market-update-2024")

	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, source.bySlug)

	require.NoError(t, c.Clear("pbsa-market-update-2024"))
	third := get(router, "/insights/pbsa-market-update-2024")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, source.bySlug)
}
