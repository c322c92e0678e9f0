package services

import (
	"context"
	"fmt"
	"time"

	"ptime/internal/apperrors"
	"ptime/internal/caching"
	"ptime/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Intent is the client-declared purpose of an OAuth round-trip.
type Intent string

const (
	IntentSignup Intent = "signup"
	IntentSignin Intent = "signin"
)

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	return i == IntentSignup || i == IntentSignin
}

// IntentService carries the declared role/intent pair across the OAuth
// redirect as a signed, short-lived state token instead of ambient
// client-side storage. Each token is single-use: the nonce is claimed in
// the cache on consumption, so a replayed callback is rejected and a
// retried reconciliation has to start a fresh round-trip.
type IntentService interface {
	Issue(role models.Role, intent Intent) (string, error)
	Consume(ctx context.Context, state string) (models.Role, Intent, error)
}

type intentClaims struct {
	Role   models.Role `json:"role"`
	Intent Intent      `json:"intent"`
	jwt.RegisteredClaims
}

type intentService struct {
	cacheSvc caching.CacheService
	secret   []byte
	ttl      time.Duration
}

func NewIntentService(cacheSvc caching.CacheService, secret string, ttl time.Duration) IntentService {
	return &intentService{
		cacheSvc: cacheSvc,
		secret:   []byte(secret),
		ttl:      ttl,
	}
}

func (s *intentService) Issue(role models.Role, intent Intent) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if !intent.Valid() {
		return "", fmt.Errorf("unknown intent %q", intent)
	}

	now := time.Now()
	claims := intentClaims{
		Role:   role,
		Intent: intent,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ptime-auth",
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *intentService) Consume(ctx context.Context, state string) (models.Role, Intent, error) {
	token, err := jwt.ParseWithClaims(state, &intentClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("invalid state token: %v", err)
	}

	claims, ok := token.Claims.(*intentClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid state token claims")
	}

	key := fmt.Sprintf("ptime:oauth_state:%s", claims.ID)
	claimed, err := s.cacheSvc.ClaimOnce(ctx, key, s.ttl)
	if err != nil {
		return "", "", apperrors.Upstream(err)
	}
	if !claimed {
		return "", "", apperrors.ErrStateReplayed
	}

	return claims.Role, claims.Intent, nil
}
