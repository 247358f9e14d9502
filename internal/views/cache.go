package views

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/partyinvite/backend/pkg/cache"
)

// cachedPage is a stored 200 response.
type cachedPage struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter copies the response body while forwarding it to the client.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCache caches GET page responses by request path.
type PageCache struct {
	loader *cache.Loader
	logger *zap.Logger
}

// NewPageCache creates a response cache on top of the shared loader's cache and ttl.
func NewPageCache(loader *cache.Loader, logger *zap.Logger) *PageCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageCache{loader: loader, logger: logger}
}

func pageKey(path string) string { return "view:" + path }

// Invalidate drops cached responses for paths.
func (p *PageCache) Invalidate(ctx context.Context, paths ...string) {
	keys := make([]string, len(paths))
	for i, path := range paths {
		keys[i] = pageKey(path)
	}
	p.loader.Invalidate(ctx, keys...)
}

// Middleware serves cached responses and stores fresh 200 responses.
func (p *PageCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := pageKey(c.Request.URL.Path)

		var page cachedPage
		hit, err := p.loader.Cache().Get(ctx, key, &page)
		if err != nil {
			p.logger.Warn("page cache get", zap.String("key", key), zap.Error(err))
		}
		if hit {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, page.ContentType, page.Body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Header("X-Cache", "MISS")
		c.Next()

		if cw.Status() != http.StatusOK {
			return
		}
		page = cachedPage{ContentType: cw.Header().Get("Content-Type"), Body: cw.buf.Bytes()}
		if err := p.loader.Cache().Set(context.Background(), key, page, p.loader.TTL()); err != nil {
			p.logger.Warn("page cache set", zap.String("key", key), zap.Error(err))
		}
	}
}
