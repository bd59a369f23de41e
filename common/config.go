package common

import (
	"errors"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string        `hcl:"port" env:"PORT" default:"8080"`
	SqliteDB      string        `hcl:"sqlite_db" env:"SQLITE_DB" default:"insights.db"`
	SessionSecret string        `hcl:"session_secret" env:"SESSION_SECRET"`
	Domain        string        `hcl:"domain" env:"DOMAIN" default:"http://localhost:8080"`
	SiteName      string        `hcl:"site_name" env:"SITE_NAME" default:"Property Insights"`
	LogoPath      string        `hcl:"logo_path" env:"LOGO_PATH" default:"/public/logo.png"`
	Env           string        `hcl:"env" env:"ENV" default:"production"`
	LogLevel      string        `hcl:"log_level" env:"LOG_LEVEL" default:"info"`
	CacheDir      string        `hcl:"cache_dir" env:"CACHE_DIR" default:"cache"`
	CacheMaxAge   time.Duration `hcl:"cache_max_age" env:"CACHE_MAX_AGE" default:"10m"`
	AdminEmails   []string      `hcl:"admin_emails" env:"ADMIN_EMAILS"`

	// Seeds one editor account on startup when both are set.
	BootstrapEmail    string `hcl:"bootstrap_email" env:"BOOTSTRAP_EMAIL"`
	BootstrapPassword string `hcl:"bootstrap_password" env:"BOOTSTRAP_PASSWORD"`
}

// LoadConfig reads .env (when present), then config.hcl, then the process
// environment. Later sources win.
func LoadConfig() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		Files:     []string{"./config.hcl", "./config.local.hcl"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET environment variable not set")
	}
	if c.SqliteDB == "" {
		return errors.New("SQLITE_DB is required")
	}
	c.Domain = strings.TrimSuffix(c.Domain, "/")
	return nil
}

// IsAdminEmail reports whether email may sign in to the editor. An empty
// allow list admits every registered user.
func (c *Config) IsAdminEmail(email string) bool {
	if len(c.AdminEmails) == 0 {
		return true
	}
	for _, e := range c.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
