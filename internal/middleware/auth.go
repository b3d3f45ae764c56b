package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/SscSPs/academy_sponsorship/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// errNoToken means the request carried neither an Authorization header nor a session cookie.
var errNoToken = errors.New("no access token")

// AuthMiddleware creates a Gin middleware handler that requires a valid application JWT, either as
// a Bearer token or in the session cookie set after sign-in.
func AuthMiddleware(jwtSecret string, jwtIssuer string, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		donorID, err := authenticate(c, jwtSecret, jwtIssuer, cookieName)
		if err != nil {
			logger.Warn("Authentication failed", slog.String("error", err.Error()))
			msg := "Invalid token"
			switch {
			case errors.Is(err, errNoToken):
				msg = "Authorization required"
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "Token has expired"
			case errors.Is(err, jwt.ErrTokenNotValidYet):
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		attachDonor(c, donorID)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is present and otherwise lets
// the request through anonymously. Donation flow endpoints use it: anonymous giving is allowed.
func OptionalAuthMiddleware(jwtSecret string, jwtIssuer string, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		donorID, err := authenticate(c, jwtSecret, jwtIssuer, cookieName)
		if err != nil {
			if !errors.Is(err, errNoToken) {
				GetLoggerFromCtx(c.Request.Context()).Info("Ignoring invalid token on optional auth route", slog.String("error", err.Error()))
			}
			c.Next()
			return
		}
		attachDonor(c, donorID)
		c.Next()
	}
}

// AdminOnly allows only the listed subjects. It must run after AuthMiddleware.
func AdminOnly(adminSubjects []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		donorID, ok := GetDonorIDFromContext(c)
		if !ok || !slices.Contains(adminSubjects, donorID) {
			GetLoggerFromCtx(c.Request.Context()).Warn("Admin access denied", slog.String("subject", donorID))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtSecret string, jwtIssuer string, cookieName string) (string, error) {
	tokenString, err := extractToken(c, cookieName)
	if err != nil {
		return "", err
	}

	claims, err := utils.ParseAndValidateJWT(tokenString, jwtSecret, jwtIssuer)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func extractToken(c *gin.Context, cookieName string) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", errors.New("authorization header format must be Bearer {token}")
		}
		return parts[1], nil
	}
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", errNoToken
}

func attachDonor(c *gin.Context, donorID string) {
	ctx := WithDonorID(c.Request.Context(), donorID)
	enrichedLogger := GetLoggerFromCtx(ctx).With(slog.String("donor_id", donorID))
	c.Request = c.Request.WithContext(WithLogger(ctx, enrichedLogger))
}
