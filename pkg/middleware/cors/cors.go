package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Options configures the CORS middleware. An empty AllowedOrigins list allows any origin
// without credentials. Entries of the form "https://*.example.sch.id" match subdomains.
type Options struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         time.Duration
}

// DefaultOptions serves the wellbeing routes: reads, the severity refresh and file downloads.
func DefaultOptions(allowedOrigins []string) Options {
	return Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         10 * time.Minute,
	}
}

type originMatcher struct {
	exact    map[string]struct{}
	suffixes []wildcard
}

type wildcard struct {
	scheme string
	suffix string
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if scheme, host, ok := strings.Cut(origin, "://*."); ok {
			m.suffixes = append(m.suffixes, wildcard{scheme: scheme + "://", suffix: "." + host})
			continue
		}
		if origin != "" {
			m.exact[origin] = struct{}{}
		}
	}
	return m
}

func (m originMatcher) allows(origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, w := range m.suffixes {
		if strings.HasPrefix(origin, w.scheme) && strings.HasSuffix(origin, w.suffix) {
			return true
		}
	}
	return false
}

// New returns a CORS middleware for opts.
func New(opts Options) gin.HandlerFunc {
	allowAll := len(opts.AllowedOrigins) == 0
	matcher := newOriginMatcher(opts.AllowedOrigins)
	methods := strings.Join(opts.AllowedMethods, ", ")
	headers := strings.Join(opts.AllowedHeaders, ", ")
	exposed := strings.Join(opts.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(int(opts.MaxAge.Seconds()))

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case matcher.allows(origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposed != "" {
			h.Set("Access-Control-Expose-Headers", exposed)
		}

		if c.Request.Method != http.MethodOptions || c.GetHeader("Access-Control-Request-Method") == "" {
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Max-Age", maxAge)
		c.AbortWithStatus(http.StatusNoContent)
	}
}
