// Package admin serves the article editor behind the session guard.
package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"propertysite/analytics"
	"propertysite/articles"
	"propertysite/cache"
	"propertysite/common"
	"propertysite/models"
	"propertysite/store"
)

// Stats is the visit tracking read side shown next to articles.
type Stats interface {
	ArticleVisitCount(slug string) int64
	VisitsByDay(days int) []analytics.DayVisits
	TopArticles(days, limit int) []analytics.ArticleVisits
}

type AdminModule struct {
	client   *store.Client
	articles ArticleStore
	cache    *cache.Cache
	stats    Stats
	cfg      *common.Config
	log      zerolog.Logger
}

func NewAdminModule(client *store.Client, repo ArticleStore, c *cache.Cache, cfg *common.Config, log zerolog.Logger) *AdminModule {
	return &AdminModule{
		client:   client,
		articles: repo,
		cache:    c,
		cfg:      cfg,
		log:      log.With().Str("component", "admin").Logger(),
	}
}

// WithStats enables visit counts in the editor.
func (a *AdminModule) WithStats(s Stats) *AdminModule {
	a.stats = s
	return a
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/admin", a.adminRoot)
	router.GET("/admin/logout", a.logout)
	router.GET("/admin/analytics", a.requireAuth, a.analyticsPage)
	router.POST("/admin/cache/clear", a.requireAuth, a.clearCache)

	articlesGroup := router.Group("/admin/articles")
	articlesGroup.Use(a.requireAuth)
	{
		articlesGroup.GET("", a.listArticles)
		articlesGroup.GET("/new", a.newArticle)
		articlesGroup.GET("/:id", a.editArticle)
		articlesGroup.POST("", a.createArticle)
		articlesGroup.PUT("/:id", a.updateArticle)
		articlesGroup.DELETE("/:id", a.deleteArticle)
		articlesGroup.POST("/:id/publish", a.togglePublished)
		articlesGroup.POST("/:id/feature", a.toggleFeatured)
	}
}

// fail maps editor errors onto responses the admin screen shows as an
// alert, or inline per field for validation.
func (a *AdminModule) fail(c *gin.Context, err error) {
	var invalid *articles.ValidationError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in the required fields", "fields": invalid.Fields})
	case errors.Is(err, articles.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Your session has expired, please sign in again"})
	case errors.Is(err, articles.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
	case errors.Is(err, articles.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Another article already uses this slug", "fields": gin.H{"slug": "already in use"}})
	case errors.Is(err, ErrReferenceOutOfRange), errors.Is(err, ErrNotEditing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		a.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("article mutation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving article: " + err.Error()})
	}
}

func (a *AdminModule) invalidate(slugs ...string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Clear(slugs...); err != nil {
		a.log.Warn().Err(err).Strs("slugs", slugs).Msg("clearing article cache")
	}
}

// current loads the article named by the :id param.
func (a *AdminModule) current(c *gin.Context) (*models.Article, bool) {
	article, err := a.articles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return nil, false
	}
	return article, true
}

func (a *AdminModule) listArticles(c *gin.Context) {
	editor := NewEditor(a.articles)
	if err := editor.Refresh(c.Request.Context()); err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, editor)
}

func (a *AdminModule) newArticle(c *gin.Context) {
	editor := NewEditor(a.articles)
	editor.New()

	c.JSON(http.StatusOK, editor)
}

func (a *AdminModule) editArticle(c *gin.Context) {
	article, ok := a.current(c)
	if !ok {
		return
	}

	editor := NewEditor(a.articles)
	editor.Edit(*article)

	visits := int64(0)
	if a.stats != nil {
		visits = a.stats.ArticleVisitCount(article.Slug)
	}

	c.JSON(http.StatusOK, struct {
		*Editor
		VisitCount int64 `json:"visit_count"`
	}{editor, visits})
}

func (a *AdminModule) analyticsPage(c *gin.Context) {
	if a.stats == nil {
		c.JSON(http.StatusOK, gin.H{"analytics_enabled": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analytics_enabled": true,
		"visits_by_day":     a.stats.VisitsByDay(15),
		"top_articles":      a.stats.TopArticles(30, 10),
	})
}

func bindForm(c *gin.Context) (ArticleForm, bool) {
	form := EmptyForm()
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article data"})
		return form, false
	}
	if form.References == nil {
		form.References = []models.Reference{}
	}
	return form, true
}

// submit runs the editor's submit and reports a reload failure after a
// successful write as a warning rather than an error.
func (a *AdminModule) submit(c *gin.Context, editor *Editor, status int, staleSlugs ...string) {
	mode := editor.Mode
	saved, err := editor.Submit(c.Request.Context())
	if saved == nil {
		a.fail(c, err)
		return
	}
	a.invalidate(append(staleSlugs, saved.Slug)...)

	if err != nil {
		a.log.Warn().Err(err).Str("id", saved.ID).Msg("article saved but list reload failed")
	}

	a.log.Info().Str("id", saved.ID).Str("slug", saved.Slug).Str("mode", string(mode)).Msg("article saved")
	c.JSON(status, gin.H{
		"success":  true,
		"article":  saved,
		"articles": editor.Articles,
	})
}

func (a *AdminModule) createArticle(c *gin.Context) {
	form, ok := bindForm(c)
	if !ok {
		return
	}

	editor := NewEditor(a.articles)
	editor.New()
	editor.Form = form

	a.submit(c, editor, http.StatusCreated)
}

func (a *AdminModule) updateArticle(c *gin.Context) {
	form, ok := bindForm(c)
	if !ok {
		return
	}
	article, ok := a.current(c)
	if !ok {
		return
	}

	editor := NewEditor(a.articles)
	editor.Edit(*article)
	editor.Form = form

	a.submit(c, editor, http.StatusOK, article.Slug)
}

func (a *AdminModule) deleteArticle(c *gin.Context) {
	article, ok := a.current(c)
	if !ok {
		return
	}

	editor := NewEditor(a.articles)
	err := editor.Delete(c.Request.Context(), article.ID)
	a.invalidate(article.Slug)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.log.Info().Str("id", article.ID).Msg("article deleted")
	c.JSON(http.StatusOK, gin.H{"success": true, "articles": editor.Articles})
}

func (a *AdminModule) togglePublished(c *gin.Context) {
	article, ok := a.current(c)
	if !ok {
		return
	}

	editor := NewEditor(a.articles)
	err := editor.TogglePublished(c.Request.Context(), *article)
	a.invalidate(article.Slug)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"published": !article.Published,
		"articles":  editor.Articles,
	})
}

func (a *AdminModule) toggleFeatured(c *gin.Context) {
	article, ok := a.current(c)
	if !ok {
		return
	}

	editor := NewEditor(a.articles)
	err := editor.ToggleFeatured(c.Request.Context(), *article)
	a.invalidate(article.Slug)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"featured": !article.Featured,
		"articles": editor.Articles,
	})
}

func (a *AdminModule) clearCache(c *gin.Context) {
	if a.cache == nil {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := a.cache.ClearAll(); err != nil {
		a.log.Error().Err(err).Msg("clearing detail cache")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error clearing cache: " + err.Error()})
		return
	}

	a.log.Info().Msg("detail cache cleared")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
