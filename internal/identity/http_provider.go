package identity

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Config holds the endpoints and client registration for the hosted
// identity provider.
type Config struct {
	AuthURL      string
	TokenURL     string
	JWKSURL      string
	LogoutURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type httpProvider struct {
	oauth      *oauth2.Config
	jwks       *keyfunc.JWKS
	logoutURL  string
	httpClient *http.Client
}

// NewHTTPProvider builds a Provider against cfg. The JWKS is fetched
// eagerly and refreshed hourly; an unknown key id triggers a refresh so
// provider key rotation does not strand valid tokens.
func NewHTTPProvider(ctx context.Context, cfg Config) (Provider, error) {
	jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
		Ctx:             ctx,
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(err error) {
			log.Printf("WARN: identity provider JWKS refresh failed: %v", err)
		},
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider JWKS: %w", err)
	}

	return &httpProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		jwks:       jwks,
		logoutURL:  cfg.LogoutURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *httpProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *httpProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("authorization code exchange failed: %w", err)
	}
	return token.AccessToken, nil
}

type providerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (p *httpProvider) VerifyAccessToken(ctx context.Context, accessToken string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(accessToken, &providerClaims{}, p.jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("provider token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*providerClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid provider token claims")
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("provider token has no email claim")
	}

	sub, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("provider token subject is not a UUID: %v", err)
	}

	return &Identity{ID: sub, Email: claims.Email}, nil
}

func (p *httpProvider) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.logoutURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider sign-out request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("provider sign-out returned status %d", resp.StatusCode)
	}
	return nil
}
