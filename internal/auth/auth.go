// Package auth guards reviewer-only routes with signed session tokens.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
)

const (
	// ReviewerKey holds the authenticated reviewer name on the gin context.
	ReviewerKey = "reviewer"

	issuer     = "candidate-evaluator"
	bcryptCost = 12
)

// Service issues and validates reviewer tokens
type Service struct {
	secret       []byte
	username     string
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewService creates an auth service. An empty secret disables auth.
func NewService(secret, username, passwordHash string, ttl time.Duration) *Service {
	return &Service{
		secret:       []byte(secret),
		username:     username,
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Enabled reports whether reviewer routes require a token
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// HashPassword returns a bcrypt hash suitable for admin_password_hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks reviewer credentials and returns a signed token
func (s *Service) Login(username, password string) (string, time.Time, error) {
	if !s.Enabled() || len(s.passwordHash) == 0 {
		return "", time.Time{}, apperrors.Unauthenticated("login is not configured")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", time.Time{}, apperrors.Unauthenticated("invalid username or password")
	}

	return s.IssueToken(username)
}

// IssueToken signs a token for subject
func (s *Service) IssueToken(subject string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError("failed to sign token", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken verifies tokenString and returns its subject
func (s *Service) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return "", apperrors.Unauthenticated("invalid or expired token")
	}
	if claims.Subject == "" {
		return "", apperrors.Unauthenticated("token has no subject")
	}
	return claims.Subject, nil
}

// Middleware requires a bearer token when auth is enabled
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		scheme, tokenString, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			apperrors.Abort(c, apperrors.Unauthenticated("missing bearer token"))
			return
		}

		subject, err := s.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			apperrors.Abort(c, err)
			return
		}

		c.Set(ReviewerKey, subject)
		c.Next()
	}
}
