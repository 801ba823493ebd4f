package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const purposeVerifyEmail = "verify_email"

var ErrInvalidVerificationToken = errors.New("invalid or expired verification token")

type verificationClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// IssueVerificationToken signs a short-lived token that proves control of the user's email.
// It carries no role, so Protected never accepts it as an access token.
func IssueVerificationToken(secret string, ttl time.Duration, userID string, now time.Time) (string, error) {
	claims := verificationClaims{
		Purpose: purposeVerifyEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseVerificationToken returns the user id of a valid, unexpired verification token.
func ParseVerificationToken(secret, token string) (string, error) {
	var claims verificationClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidVerificationToken
	}
	if claims.Purpose != purposeVerifyEmail || claims.Subject == "" || claims.ExpiresAt == nil {
		return "", ErrInvalidVerificationToken
	}
	return claims.Subject, nil
}
