package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/adapters/draft"
	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/middleware"
	"github.com/SscSPs/academy_sponsorship/internal/platform/config"
	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie  = "oauth_state"
	oauthReturnCookie = "oauth_return"
	oauthCookieMaxAge = 10 * 60

	// defaultResumePath is the frontend page that calls the resume endpoint.
	defaultResumePath = "/donate/resume"
)

// GoogleOAuthHandler runs the browser side of Google sign-in. On success the application JWT is
// stored in an HttpOnly cookie and the browser goes back to the frontend, which resumes the
// saved donation.
type GoogleOAuthHandler struct {
	identity        portssvc.IdentitySvc
	frontendBaseURL string
	sessionCookie   string
	drafts          DraftCookieConfig
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(identity portssvc.IdentitySvc, cfg *config.Config, drafts DraftCookieConfig) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		identity:        identity,
		frontendBaseURL: cfg.FrontendBaseURL,
		sessionCookie:   cfg.SessionCookieName,
		drafts:          drafts,
	}
}

// registerGoogleOAuthRoutes registers the Google OAuth routes.
func registerGoogleOAuthRoutes(r *gin.Engine, h *GoogleOAuthHandler) {
	googleRoutes := r.Group("/auth/google")
	{
		googleRoutes.GET("/login", h.LoginGoogle)
		googleRoutes.GET("/callback", h.CallbackGoogle)
	}
}

// LoginGoogle godoc
// @Summary Start Google sign-in
// @Description Redirects to Google. After sign-in the browser lands on the frontend page given by return, or the donation resume page.
// @Tags oauth
// @Param   return query string false "Frontend path to return to"
// @Success 307
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *GoogleOAuthHandler) LoginGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	state, err := h.identity.GenerateStateString(ctx)
	if err != nil {
		logger.Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, apperrors.NewInternalServerError("Failed to start sign-in"))
		return
	}

	h.setCookie(c, oauthStateCookie, state, oauthCookieMaxAge)
	h.setCookie(c, oauthReturnCookie, safeReturnPath(c.Query("return")), oauthCookieMaxAge)

	logger.Info("Redirecting to Google sign-in")
	c.Redirect(http.StatusTemporaryRedirect, h.identity.GetLoginURL(ctx, state))
}

// CallbackGoogle godoc
// @Summary Google sign-in callback
// @Description Exchanges the authorization code, sets the session cookie and redirects to the frontend. A failed sign-in discards the saved donation.
// @Tags oauth
// @Param   state query string true "OAuth state"
// @Param   code query string true "Authorization code"
// @Success 302
// @Router /auth/google/callback [get]
func (h *GoogleOAuthHandler) CallbackGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	expectedState, _ := c.Cookie(oauthStateCookie)
	returnPath, _ := c.Cookie(oauthReturnCookie)
	h.setCookie(c, oauthStateCookie, "", -1)
	h.setCookie(c, oauthReturnCookie, "", -1)

	if expectedState == "" || c.Query("state") != expectedState {
		logger.Warn("OAuth state mismatch")
		h.failSignIn(c)
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		logger.Info("Google sign-in declined", slog.String("error", errParam))
		h.failSignIn(c)
		return
	}

	donorID, err := h.identity.ResolveDonor(ctx, c.Query("code"))
	if err != nil {
		logger.Warn("Failed to resolve donor from Google", slog.String("error", err.Error()))
		h.failSignIn(c)
		return
	}

	token, expiresAt, err := h.identity.IssueAccessToken(ctx, donorID)
	if err != nil {
		logger.Error("Failed to issue access token", slog.String("error", err.Error()))
		h.failSignIn(c)
		return
	}

	h.setCookie(c, h.sessionCookie, token, int(time.Until(expiresAt).Seconds()))
	logger.Info("Donor signed in with Google", slog.String("donor_id", donorID))
	c.Redirect(http.StatusFound, h.frontendBaseURL+safeReturnPath(returnPath))
}

// failSignIn clears any saved donation so the donor starts over, and sends the browser back.
func (h *GoogleOAuthHandler) failSignIn(c *gin.Context) {
	_ = draft.NewCookieStore(c, h.drafts.Codec, h.drafts.Name, h.drafts.Secure).Clear()
	c.Redirect(http.StatusFound, h.frontendBaseURL+"/donate?identity=failed")
}

func (h *GoogleOAuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.drafts.Secure, true)
}

// safeReturnPath accepts only local absolute paths, so sign-in cannot redirect off-site.
func safeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return defaultResumePath
	}
	u, err := url.Parse(p)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return defaultResumePath
	}
	return p
}
