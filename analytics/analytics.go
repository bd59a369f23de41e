package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	visitorCookie = "insights_visitor_id"
	// Repeat visits from one visitor to one article inside this window
	// count once.
	visitWindow = 30 * time.Minute
)

// ArticleEvent is one counted visit to an article detail page.
type ArticleEvent struct {
	ID        uint      `gorm:"primary_key;autoIncrement"`
	Slug      string    `gorm:"not null;index"`
	CookieID  string    `gorm:"not null;index"`
	IPHash    string    `gorm:"not null"`
	Browser   *string
	Language  *string
	CreatedAt time.Time `gorm:"index"`
}

type AnalyticsModule struct {
	db    *gorm.DB
	route string
	log   zerolog.Logger
	now   func() time.Time
}

// NewAnalyticsModule migrates the events table and returns nil when that
// fails, which disables tracking without stopping the site.
func NewAnalyticsModule(db *gorm.DB, route string, log zerolog.Logger) *AnalyticsModule {
	log = log.With().Str("component", "analytics").Logger()
	if db == nil {
		log.Warn().Msg("analytics db is nil, tracking disabled")
		return nil
	}

	if err := db.AutoMigrate(&ArticleEvent{}); err != nil {
		log.Error().Err(err).Msg("migrating article_events")
		return nil
	}

	return &AnalyticsModule{db: db, route: route, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Track records a visit after a successful render of the tracked route,
// cached responses included.
func (a *AnalyticsModule) Track() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a == nil || c.Request.Method != http.MethodGet || c.FullPath() != a.route {
			c.Next()
			return
		}

		cookieID := a.getOrCreateCookieID(c)
		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}
		a.TrackVisit(c, c.Param("slug"), cookieID)
	}
}

func (a *AnalyticsModule) TrackVisit(c *gin.Context, slug, cookieID string) {
	if a == nil || slug == "" {
		return
	}

	var recent ArticleEvent
	err := a.db.Where("cookie_id = ? AND slug = ? AND created_at > ?", cookieID, slug, a.now().Add(-visitWindow)).
		First(&recent).Error
	if err == nil {
		return
	}

	event := ArticleEvent{
		Slug:      slug,
		CookieID:  cookieID,
		IPHash:    hashString(clientIP(c)),
		Browser:   extractBrowser(c.Request.UserAgent()),
		Language:  extractLanguage(c.GetHeader("Accept-Language")),
		CreatedAt: a.now(),
	}
	if err := a.db.Create(&event).Error; err != nil {
		a.log.Error().Err(err).Str("slug", slug).Msg("saving article visit")
	}
}

func (a *AnalyticsModule) getOrCreateCookieID(c *gin.Context) string {
	if cookie, err := c.Cookie(visitorCookie); err == nil && cookie != "" {
		return cookie
	}

	cookieID := hashString(a.now().String() + c.ClientIP() + c.Request.UserAgent())
	c.SetCookie(visitorCookie, cookieID, 60*60*24*365*2, "/", "", false, true)
	return cookieID
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// clientIP prefers proxy headers over the socket address.
func clientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func extractBrowser(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	var browser string

	// most specific first
	switch {
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	default:
		browser = "Other"
	}
	return &browser
}

// extractLanguage keeps the first tag of an Accept-Language header such as
// "en-GB,en;q=0.9".
func extractLanguage(acceptLang string) *string {
	if acceptLang == "" {
		return nil
	}
	lang := strings.TrimSpace(strings.Split(strings.Split(acceptLang, ",")[0], ";")[0])
	if lang == "" {
		return nil
	}
	return &lang
}

type DayVisits struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type ArticleVisits struct {
	Slug  string `json:"slug"`
	Count int64  `json:"count"`
}

func (a *AnalyticsModule) ArticleVisitCount(slug string) int64 {
	if a == nil {
		return 0
	}

	var count int64
	a.db.Model(&ArticleEvent{}).Where("slug = ?", slug).Count(&count)
	return count
}

// VisitsByDay returns one entry per day for the last days days, oldest
// first, with zero for days without visits.
func (a *AnalyticsModule) VisitsByDay(days int) []DayVisits {
	if a == nil || days <= 0 {
		return []DayVisits{}
	}

	now := a.now()
	var results []DayVisits
	a.db.Model(&ArticleEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", now.AddDate(0, 0, -days)).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results)

	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.Date] = r.Count
	}

	dayVisits := make([]DayVisits, days)
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -(days - 1 - i)).Format("2006-01-02")
		dayVisits[i] = DayVisits{Date: date, Count: counts[date]}
	}
	return dayVisits
}

// TopArticles returns the most visited slugs over the last days days.
func (a *AnalyticsModule) TopArticles(days, limit int) []ArticleVisits {
	if a == nil {
		return []ArticleVisits{}
	}

	results := []ArticleVisits{}
	a.db.Model(&ArticleEvent{}).
		Select("slug, COUNT(*) as count").
		Where("created_at >= ?", a.now().AddDate(0, 0, -days)).
		Group("slug").
		Order("count DESC").
		Limit(limit).
		Scan(&results)
	return results
}
