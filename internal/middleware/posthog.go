package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/academy_sponsorship/internal/utils"
	"github.com/gin-gonic/gin"
)

// FunnelTracking creates a Gin middleware handler that reports donation funnel steps to PostHog.
// Only successful requests are tracked. Anonymous visitors are keyed by request id.
func FunnelTracking(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// e.g. "/api/v1/donations/intents" -> "donations_intents"
		eventName := strings.TrimPrefix(c.FullPath(), "/api/v1/")
		eventName = strings.ReplaceAll(strings.Trim(eventName, "/"), "/", "_")
		if eventName == "" {
			return
		}

		distinctID, identified := GetDonorIDFromContext(c)
		if !identified {
			distinctID = "anon:" + c.Writer.Header().Get("X-Request-ID")
		}

		posthogClient.Enqueue(distinctID, "funnel_"+strings.ToLower(c.Request.Method)+"_"+eventName, map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"identified":  identified,
		})
	}
}
