package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"propertysite/admin"
	"propertysite/analytics"
	"propertysite/articles"
	"propertysite/cache"
	"propertysite/common"
	"propertysite/database"
	"propertysite/insights"
	"propertysite/site"
	"propertysite/store"
)

func main() {
	bootLog := common.NewLogger(os.Getenv("ENV"), "info")

	cfg, err := common.LoadConfig()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("loading config")
	}
	log := common.NewLogger(cfg.Env, cfg.LogLevel)

	db, err := common.ConnectDb(cfg.SqliteDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	client, err := store.NewClient(db)
	if err != nil {
		log.Fatal().Err(err).Msg("building store client")
	}
	repo := articles.NewRepository(client)

	if cfg.BootstrapEmail != "" && cfg.BootstrapPassword != "" {
		created, err := admin.EnsureUser(context.Background(), client, cfg.BootstrapEmail, cfg.BootstrapPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("seeding editor account")
		}
		if created {
			log.Info().Str("email", cfg.BootstrapEmail).Msg("created editor account")
		}
	}

	detailCache := cache.New(cfg.CacheDir, cfg.CacheMaxAge)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sweepCache(ctx, detailCache, cfg.CacheMaxAge, log)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), common.RequestLogger(log))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("insights-session", sessionStore))

	router.Static("/public", "./public")

	stats := analytics.NewAnalyticsModule(db, insights.DetailRoute, log)
	router.Use(stats.Track())

	siteInfo := insights.SiteInfo{Name: cfg.SiteName, BaseURL: cfg.Domain, LogoPath: cfg.LogoPath}

	insightsModule := insights.NewInsightsModule(repo, siteInfo, detailCache, log)
	insightsModule.RegisterRoutes(router)

	adminModule := admin.NewAdminModule(client, repo, detailCache, cfg, log)
	if stats != nil {
		adminModule.WithStats(stats)
	}
	adminModule.RegisterRoutes(router)

	siteModule := site.NewSiteModule(repo, client, cfg.Domain, log)
	siteModule.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

// sweepCache drops expired detail responses until ctx ends.
func sweepCache(ctx context.Context, c *cache.Cache, every time.Duration, log zerolog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ClearOld(); err != nil {
				log.Warn().Err(err).Msg("sweeping detail cache")
			}
		}
	}
}
