package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unmatched"

// RequestObserver receives one observation per served request.
type RequestObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Metrics records request duration by route template. Requests that matched no route
// share one label. The scrape endpoint itself is not observed.
func Metrics(observer RequestObserver, scrapePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if observer == nil || c.Request.URL.Path == scrapePath {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		observer.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
