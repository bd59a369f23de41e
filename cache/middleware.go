package cache

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware caches successful JSON responses of a route carrying a :slug
// parameter. variant splits the cache for responses that depend on the
// request, such as mobile and desktop share links.
func (c *Cache) Middleware(variant func(*gin.Context) string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil || ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}

		slug := ctx.Param("slug")
		if slug == "" {
			ctx.Next()
			return
		}
		v := variant(ctx)

		if cached, found := c.Read(slug, v); found {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			ctx.Abort()
			return
		}

		ctx.Header("X-Cache", "MISS")
		gen := c.Generation(slug)

		writer := &responseWriter{
			ResponseWriter: ctx.Writer,
			body:           bytes.NewBuffer(nil),
		}
		ctx.Writer = writer

		ctx.Next()

		if ctx.Writer.Status() == http.StatusOK &&
			strings.HasPrefix(ctx.Writer.Header().Get("Content-Type"), "application/json") {
			c.WriteIfCurrent(slug, v, gen, writer.body.Bytes())
		}
	}
}
