package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"ptime/internal/caching"
	"ptime/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService issues and manages PTime bearer credentials. The access
// token is a signed JWT carrying {sub, email, role}; refresh tokens are
// opaque and stored hashed in the cache.
type TokenService interface {
	Issue(ctx context.Context, profile *models.Profile) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Validate(ctx context.Context, tokenString string) (*AuthClaims, error)
	Revoke(ctx context.Context, accessToken string) error
	RevokeRefresh(ctx context.Context, refreshToken string) error
	IsRevoked(ctx context.Context, tokenID string) bool
}

// AuthClaims are the claims inside a PTime access token.
type AuthClaims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

type tokenService struct {
	cacheSvc   caching.CacheService
	profiles   ProfileFetcher
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

// ProfileFetcher is the slice of the profile store the refresh path needs.
type ProfileFetcher interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// NewTokenService creates a new token service.
func NewTokenService(cacheSvc caching.CacheService, profiles ProfileFetcher, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) TokenService {
	return &tokenService{
		cacheSvc:   cacheSvc,
		profiles:   profiles,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *tokenService) Issue(ctx context.Context, profile *models.Profile) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := AuthClaims{
		Email: profile.Email,
		Role:  profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ptime-auth",
			Subject:   profile.ID.String(),
			Audience:  jwt.ClaimStrings{"ptime-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken := generateSecureToken()
	refreshTokenHash := hashToken(refreshToken)

	refreshData := fmt.Sprintf("%s:%d", profile.ID.String(), now.Unix()+int64(s.refreshTTL))
	cacheKey := refreshTokenKey(refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		// Token issuance succeeded; the refresh token just won't work.
		log.Printf("Failed to store refresh token: %v", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		TokenID:      tokenID,
		IssuedAt:     now,
	}, nil
}

func (s *tokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	refreshTokenHash := hashToken(refreshToken)
	cacheKey := refreshTokenKey(refreshTokenHash)

	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	parts := strings.SplitN(tokenData, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid token data")
	}

	profileID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid profile ID in token")
	}

	// Rotate: the old refresh token is single-use.
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to delete rotated refresh token: %v", err)
	}

	// The profile is re-fetched so a deleted profile cannot refresh its way
	// back into a session.
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("profile no longer exists")
	}

	return s.Issue(ctx, profile)
}

func (s *tokenService) Validate(ctx context.Context, tokenString string) (*AuthClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := jwtToken.Claims.(*AuthClaims)
	if !ok || !jwtToken.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if s.IsRevoked(ctx, claims.ID) {
		return nil, fmt.Errorf("token has been revoked")
	}

	return claims, nil
}

func (s *tokenService) Revoke(ctx context.Context, accessToken string) error {
	claims, err := s.Validate(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("cannot revoke invalid token: %v", err)
	}

	blacklistKey := tokenBlacklistKey(claims.ID)
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil // already expired
	}
	if err := s.cacheSvc.SetString(ctx, blacklistKey, "revoked", ttl); err != nil {
		log.Printf("Failed to blacklist token: %v", err)
		return err
	}
	return nil
}

func (s *tokenService) RevokeRefresh(ctx context.Context, refreshToken string) error {
	return s.cacheSvc.Delete(ctx, refreshTokenKey(hashToken(refreshToken)))
}

func (s *tokenService) IsRevoked(ctx context.Context, tokenID string) bool {
	_, err := s.cacheSvc.GetString(ctx, tokenBlacklistKey(tokenID))
	return err == nil
}

func refreshTokenKey(hash string) string {
	return fmt.Sprintf("ptime:refresh_token:%s", hash)
}

func tokenBlacklistKey(tokenID string) string {
	return fmt.Sprintf("ptime:token_blacklist:%s", tokenID)
}

func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
