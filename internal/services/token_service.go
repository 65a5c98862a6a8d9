package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	appErr "folio/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// BearerPrefix is the case-sensitive scheme prefix of the Authorization header.
const BearerPrefix = "Bearer "

// Identity is the authenticated caller carried by a verified token.
type Identity struct {
	ID string `json:"id"`
}

// Claims is the JWT payload: {"user":{"id":...},"iat":...,"exp":...}.
type Claims struct {
	User Identity `json:"user"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256 tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue signs a token for userID that expires after the configured TTL.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		User: Identity{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", appErr.Internal(fmt.Errorf("sign token: %w", err))
	}
	return signed, nil
}

// IssueBearer issues a token and prefixes it with the Bearer scheme.
func (s *TokenService) IssueBearer(userID string) (string, error) {
	token, err := s.Issue(userID)
	if err != nil {
		return "", err
	}
	return BearerPrefix + token, nil
}

// Verify parses and validates a raw token.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, appErr.Wrap(err, appErr.CodeTokenExpired, "Token has expired, please log in again")
		}
		return Identity{}, appErr.Wrap(err, appErr.CodeTokenMalformed, "Invalid token format")
	}
	if claims.User.ID == "" {
		return Identity{}, appErr.New(appErr.CodeTokenMalformed, "Invalid token format")
	}
	return claims.User, nil
}

// VerifyHeader extracts the token from an Authorization header value and verifies it.
func (s *TokenService) VerifyHeader(header string) (Identity, error) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return Identity{}, appErr.New(appErr.CodeMissingToken, "No valid Bearer token provided, authorization denied")
	}
	return s.Verify(strings.TrimPrefix(header, BearerPrefix))
}
