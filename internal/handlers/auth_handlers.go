package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ptime/internal/common"
	"ptime/internal/identity"
	"ptime/internal/models"
	"ptime/internal/repositories"
	"ptime/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	provider     identity.Provider
	intentSvc    services.IntentService
	reconcileSvc services.ReconcileService
	tokenSvc     services.TokenService
	profileRepo  repositories.ProfileRepository
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(provider identity.Provider, intentSvc services.IntentService, reconcileSvc services.ReconcileService, tokenSvc services.TokenService, profileRepo repositories.ProfileRepository) *AuthHandlers {
	return &AuthHandlers{
		provider:     provider,
		intentSvc:    intentSvc,
		reconcileSvc: reconcileSvc,
		tokenSvc:     tokenSvc,
		profileRepo:  profileRepo,
	}
}

// AuthResponse is returned after a successful reconciliation.
type AuthResponse struct {
	models.TokenResponse
	User *models.Profile `json:"user"`
}

// OAuthStartRequest declares the role and intent before the redirect.
type OAuthStartRequest struct {
	Role   models.Role     `json:"role"`
	Intent services.Intent `json:"intent"`
}

// OAuthStartResponse carries the provider authorization URL and the
// signed state token the callback will consume.
type OAuthStartResponse struct {
	AuthorizeURL string `json:"authorize_url"`
	State        string `json:"state"`
}

// OAuthStart godoc
// @Summary Begin an OAuth round-trip with a declared role and intent
// @Tags auth
// @Accept json
// @Produce json
// @Param request body OAuthStartRequest true "Declared role and intent"
// @Success 200 {object} OAuthStartResponse
// @Failure 400 {object} common.ErrorResponse
// @Router /auth/oauth/start [post]
func (h *AuthHandlers) OAuthStart(c echo.Context) error {
	var req OAuthStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if !req.Role.Valid() {
		return common.SendValidationError(c, "role", "must be worker or employer")
	}
	if !req.Intent.Valid() {
		return common.SendValidationError(c, "intent", "must be signup or signin")
	}

	state, err := h.intentSvc.Issue(req.Role, req.Intent)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue state token")
	}

	return c.JSON(http.StatusOK, OAuthStartResponse{
		AuthorizeURL: h.provider.AuthCodeURL(state),
		State:        state,
	})
}

// OAuthCallback godoc
// @Summary Complete an OAuth round-trip and reconcile the identity
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State token from /auth/oauth/start"
// @Success 200 {object} AuthResponse
// @Failure 403 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router /auth/oauth/callback [get]
func (h *AuthHandlers) OAuthCallback(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return common.SendValidationError(c, "code", "code and state are required")
	}

	role, intent, err := h.intentSvc.Consume(ctx, state)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	providerToken, err := h.provider.Exchange(ctx, code)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Authorization code exchange failed")
	}

	ident, err := h.provider.VerifyAccessToken(ctx, providerToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid provider token")
	}

	var profile *models.Profile
	switch intent {
	case services.IntentSignup:
		profile, err = h.reconcileSvc.Signup(ctx, ident, providerToken, role)
	default:
		profile, err = h.reconcileSvc.Signin(ctx, ident, providerToken, role)
	}
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return h.respondWithSession(c, http.StatusOK, profile)
}

// SignupRequest declares the role for a direct signup.
type SignupRequest struct {
	Role models.Role `json:"role"`
}

// Signup godoc
// @Summary Register a profile for an externally confirmed identity
// @Description The Authorization header carries the identity provider's access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Declared role"
// @Success 201 {object} AuthResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if !req.Role.Valid() {
		return common.SendValidationError(c, "role", "must be worker or employer")
	}

	providerToken, err := bearerToken(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	ident, err := h.provider.VerifyAccessToken(ctx, providerToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid provider token")
	}

	profile, err := h.reconcileSvc.Signup(ctx, ident, providerToken, req.Role)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return h.respondWithSession(c, http.StatusCreated, profile)
}

// SigninRequest declares the role being signed in as.
type SigninRequest struct {
	Role models.Role `json:"role"`
}

// Signin godoc
// @Summary Establish a session for an externally confirmed identity
// @Description The Authorization header carries the identity provider's access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Declared role"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} common.ErrorResponse
// @Failure 403 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandlers) Signin(c echo.Context) error {
	ctx := c.Request().Context()

	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if !req.Role.Valid() {
		return common.SendValidationError(c, "role", "must be worker or employer")
	}

	providerToken, err := bearerToken(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	ident, err := h.provider.VerifyAccessToken(ctx, providerToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid provider token")
	}

	profile, err := h.reconcileSvc.Signin(ctx, ident, providerToken, req.Role)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return h.respondWithSession(c, http.StatusOK, profile)
}

// Refresh godoc
// @Summary Exchange a refresh token for a new session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} common.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh token is required")
	}
	if req.GrantType != "refresh_token" {
		return common.SendValidationError(c, "grant_type", "grant type must be refresh_token")
	}

	tokenResponse, err := h.tokenSvc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	return c.JSON(http.StatusOK, tokenResponse)
}

// Profile godoc
// @Summary Get the authenticated profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 401 {object} common.ErrorResponse
// @Router /auth/profile [get]
func (h *AuthHandlers) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	profileID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
	}

	return c.JSON(http.StatusOK, profile)
}

// SignoutRequest optionally carries the refresh token to discard.
type SignoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Signout godoc
// @Summary Invalidate the current session
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} common.ErrorResponse
// @Router /auth/signout [post]
func (h *AuthHandlers) Signout(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := common.GetProfileIDFromContext(ctx); !ok {
		return common.SendUnauthorizedError(c)
	}

	accessToken, err := bearerToken(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	if err := h.tokenSvc.Revoke(ctx, accessToken); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to revoke token")
	}

	var req SignoutRequest
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		if err := h.tokenSvc.RevokeRefresh(ctx, req.RefreshToken); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to revoke refresh token")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Signed out successfully",
	})
}

func (h *AuthHandlers) respondWithSession(c echo.Context, status int, profile *models.Profile) error {
	tokenResponse, err := h.tokenSvc.Issue(c.Request().Context(), profile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate tokens")
	}

	return c.JSON(status, AuthResponse{
		TokenResponse: *tokenResponse,
		User:          profile,
	})
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || token == "" {
		return "", errors.New("invalid authorization header")
	}
	return token, nil
}
