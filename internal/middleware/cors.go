package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// originPolicy decides which browser origins may call the API.
type originPolicy struct {
	wildcard bool
	allowed  map[string]struct{}
}

func newOriginPolicy(list string) originPolicy {
	p := originPolicy{allowed: map[string]struct{}{}}
	for _, o := range strings.Split(list, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			p.wildcard = true
		default:
			p.allowed[o] = struct{}{}
		}
	}
	if len(p.allowed) == 0 {
		p.wildcard = true
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or "" when it is refused.
func (p originPolicy) allowOrigin(origin string) string {
	if p.wildcard {
		return "*"
	}
	if _, ok := p.allowed[origin]; ok {
		return origin
	}
	return ""
}

// CORS allows the invitation frontend to post actions from another origin.
// allowedOrigins is "*" or a comma-separated list such as "https://party.example,http://localhost:3000".
func CORS(allowedOrigins string) gin.HandlerFunc {
	policy := newOriginPolicy(allowedOrigins)
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allow := policy.allowOrigin(origin)
		if allow != "*" {
			// The response differs per origin, so shared caches must key on it.
			c.Writer.Header().Add("Vary", "Origin")
		}
		if allow != "" {
			c.Header("Access-Control-Allow-Origin", allow)
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Cache")
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		if allow == "" && origin != "" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")
		c.AbortWithStatus(http.StatusNoContent)
	}
}
