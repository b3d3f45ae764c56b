package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/platform/config"
	"github.com/SscSPs/academy_sponsorship/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// googleSubjectPrefix namespaces donor ids issued from Google accounts.
const googleSubjectPrefix = "google:"

// idTokenValidator matches idtoken.Validate; tests replace it.
type idTokenValidator func(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)

// identityService implements IdentitySvc on top of Google's OAuth2 code flow.
type identityService struct {
	BaseService
	cfg          *config.Config
	oauth2Config *oauth2.Config
	validate     idTokenValidator
}

// NewIdentityService creates a new instance of identityService.
func NewIdentityService(cfg *config.Config) portssvc.IdentitySvc {
	return &identityService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
}

var _ portssvc.IdentitySvc = (*identityService)(nil)

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *identityService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.NewOAuthState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

func (s *identityService) GetLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// ResolveDonor exchanges the authorization code and validates the returned ID token. The donor
// id is the token subject, which Google keeps stable for the lifetime of the account.
func (s *identityService) ResolveDonor(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: authorization code is required", apperrors.ErrValidation)
	}
	if s.cfg.GoogleClientID == "" {
		return "", errors.New("google client ID is not configured in the application")
	}

	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		s.LogWarn(ctx, "OAuth code exchange failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: failed to exchange oauth code: %v", apperrors.ErrUnauthorized, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("%w: identity provider returned no id_token", apperrors.ErrUnauthorized)
	}
	return s.donorFromIDToken(ctx, rawIDToken)
}

func (s *identityService) donorFromIDToken(ctx context.Context, rawIDToken string) (string, error) {
	payload, err := s.validate(ctx, rawIDToken, s.cfg.GoogleClientID)
	if err != nil {
		return "", fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrUnauthorized, err)
	}
	if payload.Subject == "" {
		return "", fmt.Errorf("%w: google ID token has no subject", apperrors.ErrUnauthorized)
	}
	return googleSubjectPrefix + payload.Subject, nil
}

// IssueAccessToken creates a new JWT access token for the donor.
func (s *identityService) IssueAccessToken(ctx context.Context, donorID string) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)
	accessToken, err := utils.GenerateJWT(donorID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("donor_id", donorID))
		return "", time.Time{}, err
	}
	return accessToken, expiryTime, nil
}
