package site

import (
	"context"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"propertysite/insights"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SiteModule struct {
	articles insights.ArticleSource
	store    Pinger
	domain   string
	log      zerolog.Logger
}

func NewSiteModule(articles insights.ArticleSource, store Pinger, domain string, log zerolog.Logger) *SiteModule {
	return &SiteModule{
		articles: articles,
		store:    store,
		domain:   strings.TrimSuffix(domain, "/"),
		log:      log.With().Str("component", "site").Logger(),
	}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.index)
	router.GET("/health", s.health)
	router.GET("/sitemap.xml", s.sitemap)
}

func (s *SiteModule) index(c *gin.Context) {
	c.Redirect(http.StatusFound, insights.ListingPath)
}

func (s *SiteModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// loc returns the absolute URL of path, escaped for XML text.
func (s *SiteModule) loc(path string) string {
	return html.EscapeString(s.domain + path)
}

func (s *SiteModule) sitemap(c *gin.Context) {
	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	sitemap.WriteString("  <url>\n")
	sitemap.WriteString("    <loc>" + s.loc(insights.ListingPath) + "</loc>\n")
	sitemap.WriteString("    <changefreq>daily</changefreq>\n")
	sitemap.WriteString("    <priority>0.8</priority>\n")
	sitemap.WriteString("  </url>\n")

	// A failed fetch still serves the listing entry.
	published, err := s.articles.ListPublished(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("loading articles for sitemap")
	}

	for _, article := range published {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + s.loc(insights.ArticlePath(article.Slug)) + "</loc>\n")
		sitemap.WriteString("    <lastmod>" + article.UpdatedAt.UTC().Format(time.RFC3339) + "</lastmod>\n")
		sitemap.WriteString("    <changefreq>monthly</changefreq>\n")
		sitemap.WriteString("    <priority>0.6</priority>\n")
		sitemap.WriteString("  </url>\n")
	}

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}
