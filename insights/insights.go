// Package insights serves the public article index and article pages.
package insights

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"propertysite/articles"
	"propertysite/cache"
	"propertysite/models"
)

// maxLoadMore bounds the ?more= query parameter.
const maxLoadMore = 100

// DetailRoute is the gin route pattern of an article page.
const DetailRoute = ListingPath + "/:slug"

// ArticleSource is the read side the public pages need.
type ArticleSource interface {
	ListPublished(ctx context.Context) ([]models.Article, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Article, error)
}

type InsightsModule struct {
	articles ArticleSource
	site     SiteInfo
	cache    *cache.Cache
	log      zerolog.Logger
}

func NewInsightsModule(articles ArticleSource, site SiteInfo, c *cache.Cache, log zerolog.Logger) *InsightsModule {
	return &InsightsModule{
		articles: articles,
		site:     site,
		cache:    c,
		log:      log.With().Str("component", "insights").Logger(),
	}
}

func (m *InsightsModule) RegisterRoutes(router *gin.Engine) {
	router.GET(ListingPath, m.index)
	router.GET(DetailRoute, m.cache.Middleware(deviceVariant), m.article)
}

func deviceVariant(c *gin.Context) string {
	if IsMobile(c.Request.UserAgent()) {
		return "mobile"
	}
	return "desktop"
}

// index renders the listing. A failed fetch shows the empty state rather
// than an error page.
func (m *InsightsModule) index(c *gin.Context) {
	collection, err := m.articles.ListPublished(c.Request.Context())
	if err != nil {
		m.log.Error().Err(err).Msg("loading published articles")
	}

	listing := NewListing()
	listing.Select(c.Query("category"))
	if more, err := strconv.Atoi(c.Query("more")); err == nil {
		for i := 0; i < min(more, maxLoadMore); i++ {
			listing.LoadMore()
		}
	}

	c.JSON(http.StatusOK, listing.Build(collection))
}

// article renders one published article. Missing, unpublished and failed
// lookups all go back to the listing.
func (m *InsightsModule) article(c *gin.Context) {
	slug := c.Param("slug")

	a, err := m.articles.GetPublishedBySlug(c.Request.Context(), slug)
	if err != nil {
		event := m.log.Error()
		if articles.IsNotFound(err) {
			event = m.log.Debug()
		}
		event.Err(err).Str("slug", slug).Msg("article unavailable, redirecting to listing")
		c.Redirect(http.StatusFound, ListingPath)
		return
	}

	c.JSON(http.StatusOK, BuildDetail(a, m.site, c.Request.UserAgent()))
}
