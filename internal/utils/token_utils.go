package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenAudience is the audience of application access tokens. Other tokens signed with the
// same secret, such as donation drafts, never carry it.
const AccessTokenAudience = "sponsorship-api"

// GenerateJWT issues an HS256 application token for subject.
func GenerateJWT(subject string, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{AccessTokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return SignClaims(claims, secret)
}

// SignClaims signs arbitrary claims with HS256. The draft cookie uses it for its own claim type.
func SignClaims(claims jwt.Claims, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("signing secret is empty")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseClaims verifies tokenString and decodes it into claims. Only HMAC signatures are accepted.
func ParseClaims(tokenString string, secret string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return err // expired, not valid yet, bad signature...
	}
	if !token.Valid {
		return jwt.ErrTokenSignatureInvalid
	}
	return nil
}

// ParseAndValidateJWT parses an application access token from issuer and returns its registered
// claims. Issuer, audience, expiry and subject are all required.
func ParseAndValidateJWT(tokenString string, secretKey string, issuer string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	err := ParseClaims(tokenString, secretKey, claims,
		jwt.WithIssuer(issuer),
		jwt.WithAudience(AccessTokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
