package common

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewLogger builds the service logger. Console output in development, JSON
// everywhere else.
func NewLogger(env, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}

	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Str("service", "insights").
			Logger()
	}

	return zerolog.New(os.Stdout).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "insights").
		Logger()
}

// RequestLogger logs one line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
