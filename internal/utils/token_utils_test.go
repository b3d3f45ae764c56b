package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "token-test-secret"
	testIssuer = "academy-sponsorship"
)

func TestParseAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("google:1", testSecret, time.Hour, testIssuer)
	require.NoError(t, err)

	claims, err := ParseAndValidateJWT(token, testSecret, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "google:1", claims.Subject)
	assert.Equal(t, jwt.ClaimStrings{AccessTokenAudience}, claims.Audience)
}

func TestParseAndValidateJWT_Rejections(t *testing.T) {
	expiry := jwt.NewNumericDate(time.Now().Add(time.Hour))
	sign := func(claims jwt.RegisteredClaims) string {
		token, err := SignClaims(claims, testSecret)
		require.NoError(t, err)
		return token
	}
	valid := jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "google:1",
		Audience:  jwt.ClaimStrings{AccessTokenAudience},
		ExpiresAt: expiry,
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{name: "other issuer", token: sign(withIssuer(valid, "elsewhere")), secret: testSecret, wantErr: jwt.ErrTokenInvalidIssuer},
		{name: "other audience", token: sign(withAudience(valid, jwt.ClaimStrings{"donation-draft"})), secret: testSecret, wantErr: jwt.ErrTokenInvalidAudience},
		{name: "no audience", token: sign(withAudience(valid, nil)), secret: testSecret, wantErr: jwt.ErrTokenRequiredClaimMissing},
		{name: "no expiry", token: sign(withExpiry(valid, nil)), secret: testSecret, wantErr: jwt.ErrTokenRequiredClaimMissing},
		{name: "wrong secret", token: sign(valid), secret: "other-secret", wantErr: jwt.ErrTokenSignatureInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAndValidateJWT(tt.token, tt.secret, testIssuer)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("no subject", func(t *testing.T) {
		noSubject := valid
		noSubject.Subject = ""
		_, err := ParseAndValidateJWT(sign(noSubject), testSecret, testIssuer)
		assert.Error(t, err)
	})
}

func withIssuer(c jwt.RegisteredClaims, issuer string) jwt.RegisteredClaims {
	c.Issuer = issuer
	return c
}

func withAudience(c jwt.RegisteredClaims, aud jwt.ClaimStrings) jwt.RegisteredClaims {
	c.Audience = aud
	return c
}

func withExpiry(c jwt.RegisteredClaims, exp *jwt.NumericDate) jwt.RegisteredClaims {
	c.ExpiresAt = exp
	return c
}
