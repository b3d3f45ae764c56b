package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// donorIDKey is the key used to store the authenticated donor's ID in the request context.
const donorIDKey = contextKey("donorID")

// WithDonorID returns a copy of ctx carrying the authenticated donor id.
func WithDonorID(ctx context.Context, donorID string) context.Context {
	return context.WithValue(ctx, donorIDKey, donorID)
}

// GetDonorIDFromContext retrieves the authenticated donor ID from the request.
// It returns the donor ID and a boolean indicating if it was found.
func GetDonorIDFromContext(c *gin.Context) (string, bool) {
	donorID, ok := c.Request.Context().Value(donorIDKey).(string)
	if !ok || donorID == "" {
		return "", false
	}
	return donorID, true
}
