package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
	degradedKey     = "degraded_signals"
	startedAtKey    = "response_started_at"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startedAtKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetCacheHit records whether the response was served from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
}

// SetDegraded records the wellbeing sources that could not be read for this response.
func SetDegraded(c *gin.Context, signals []string) {
	if len(signals) == 0 {
		return
	}
	ensureMeta(c)[degradedKey] = signals
}

// ExtractMeta returns the metadata map stored on the context with the elapsed processing time.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	meta := storedMeta(c)
	if meta == nil {
		return nil
	}
	if started, ok := c.Get(startedAtKey); ok {
		if at, ok := started.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(at).Milliseconds()
		}
	}
	return meta
}

func storedMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	value, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	meta, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := storedMeta(c); meta != nil {
		return meta
	}
	meta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
