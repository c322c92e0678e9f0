package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ptime/internal/apperrors"
	"ptime/internal/common"
	"ptime/internal/identity"
	"ptime/internal/models"
	"ptime/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) VerifyAccessToken(ctx context.Context, accessToken string) (*identity.Identity, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

type MockIntentService struct {
	mock.Mock
}

func (m *MockIntentService) Issue(role models.Role, intent services.Intent) (string, error) {
	args := m.Called(role, intent)
	return args.String(0), args.Error(1)
}

func (m *MockIntentService) Consume(ctx context.Context, state string) (models.Role, services.Intent, error) {
	args := m.Called(ctx, state)
	return args.Get(0).(models.Role), args.Get(1).(services.Intent), args.Error(2)
}

type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) Signup(ctx context.Context, ident *identity.Identity, providerToken string, role models.Role) (*models.Profile, error) {
	args := m.Called(ctx, ident, providerToken, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockReconcileService) Signin(ctx context.Context, ident *identity.Identity, providerToken string, declaredRole models.Role) (*models.Profile, error) {
	args := m.Called(ctx, ident, providerToken, declaredRole)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(ctx context.Context, profile *models.Profile) (*models.TokenResponse, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockTokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockTokenService) Validate(ctx context.Context, tokenString string) (*services.AuthClaims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthClaims), args.Error(1)
}

func (m *MockTokenService) Revoke(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockTokenService) RevokeRefresh(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockTokenService) IsRevoked(ctx context.Context, tokenID string) bool {
	args := m.Called(ctx, tokenID)
	return args.Bool(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

type AuthHandlersTestSuite struct {
	suite.Suite
	echo          *echo.Echo
	mockProvider  *MockProvider
	mockIntents   *MockIntentService
	mockReconcile *MockReconcileService
	mockTokens    *MockTokenService
	mockProfiles  *MockProfileRepo
	handlers      *AuthHandlers
	profileID     uuid.UUID
	profile       *models.Profile
	session       *models.TokenResponse
}

func (suite *AuthHandlersTestSuite) SetupTest() {
	suite.echo = echo.New()
	suite.mockProvider = &MockProvider{}
	suite.mockIntents = &MockIntentService{}
	suite.mockReconcile = &MockReconcileService{}
	suite.mockTokens = &MockTokenService{}
	suite.mockProfiles = &MockProfileRepo{}
	suite.handlers = NewAuthHandlers(suite.mockProvider, suite.mockIntents, suite.mockReconcile, suite.mockTokens, suite.mockProfiles)

	suite.profileID = uuid.New()
	suite.profile = &models.Profile{
		ID:        suite.profileID,
		Email:     "owner@example.com",
		Role:      models.RoleEmployer,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	suite.session = &models.TokenResponse{
		AccessToken:  "access-token",
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		RefreshToken: "refresh-token",
		TokenID:      uuid.NewString(),
		IssuedAt:     time.Now(),
	}

	suite.mockProvider.Test(suite.T())
	suite.mockIntents.Test(suite.T())
	suite.mockReconcile.Test(suite.T())
	suite.mockTokens.Test(suite.T())
	suite.mockProfiles.Test(suite.T())
}

func (suite *AuthHandlersTestSuite) TearDownTest() {
	suite.mockProvider.AssertExpectations(suite.T())
	suite.mockIntents.AssertExpectations(suite.T())
	suite.mockReconcile.AssertExpectations(suite.T())
	suite.mockTokens.AssertExpectations(suite.T())
	suite.mockProfiles.AssertExpectations(suite.T())
}

func TestAuthHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlersTestSuite))
}

// newContext builds an echo context; bearer sets the Authorization header
// and authenticated attaches the resolved identity the middleware would.
func (suite *AuthHandlersTestSuite) newContext(method, target, body, bearer string, authenticated bool) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	c := suite.echo.NewContext(req, rec)

	if authenticated {
		ctx := common.WithIdentity(req.Context(), suite.profileID, suite.profile.Email, suite.profile.Role)
		c.SetRequest(c.Request().WithContext(ctx))
	}
	return c, rec
}

func (suite *AuthHandlersTestSuite) decodeError(rec *httptest.ResponseRecorder) common.ErrorResponse {
	var resp common.ErrorResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (suite *AuthHandlersTestSuite) TestOAuthStart_Success() {
	suite.mockIntents.On("Issue", models.RoleWorker, services.IntentSignup).Return("signed-state", nil)
	suite.mockProvider.On("AuthCodeURL", "signed-state").Return("https://id.example.com/authorize?state=signed-state")

	c, rec := suite.newContext(http.MethodPost, "/v1/auth/oauth/start", `{"role":"worker","intent":"signup"}`, "", false)
	err := suite.handlers.OAuthStart(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var resp OAuthStartResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "signed-state", resp.State)
	assert.Contains(suite.T(), resp.AuthorizeURL, "state=signed-state")
}

func (suite *AuthHandlersTestSuite) TestOAuthStart_RejectsUnknownRole() {
	c, rec := suite.newContext(http.MethodPost, "/v1/auth/oauth/start", `{"role":"admin","intent":"signup"}`, "", false)
	err := suite.handlers.OAuthStart(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "validation_error", suite.decodeError(rec).Error.Code)
	suite.mockIntents.AssertNotCalled(suite.T(), "Issue", mock.Anything, mock.Anything)
}

func (suite *AuthHandlersTestSuite) TestOAuthStart_RejectsUnknownIntent() {
	c, rec := suite.newContext(http.MethodPost, "/v1/auth/oauth/start", `{"role":"worker","intent":"reset"}`, "", false)
	err := suite.handlers.OAuthStart(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestOAuthCallback_RequiresCodeAndState() {
	c, rec := suite.newContext(http.MethodGet, "/v1/auth/oauth/callback?code=abc", "", "", false)
	err := suite.handlers.OAuthCallback(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "validation_error", suite.decodeError(rec).Error.Code)
}

func (suite *AuthHandlersTestSuite) TestOAuthCallback_ReplayedState() {
	suite.mockIntents.On("Consume", mock.Anything, "used-state").
		Return(models.Role(""), services.Intent(""), apperrors.ErrStateReplayed)

	c, rec := suite.newContext(http.MethodGet, "/v1/auth/oauth/callback?code=abc&state=used-state", "", "", false)
	err := suite.handlers.OAuthCallback(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusConflict, rec.Code)
	assert.Equal(suite.T(), "state_replayed", suite.decodeError(rec).Error.Code)
	suite.mockProvider.AssertNotCalled(suite.T(), "Exchange", mock.Anything, mock.Anything)
}

func (suite *AuthHandlersTestSuite) TestOAuthCallback_SignupFlow() {
	ident := &identity.Identity{ID: suite.profileID, Email: suite.profile.Email}
	suite.profile.Role = models.RoleWorker

	suite.mockIntents.On("Consume", mock.Anything, "signed-state").
		Return(models.RoleWorker, services.IntentSignup, nil)
	suite.mockProvider.On("Exchange", mock.Anything, "auth-code").Return("provider-token", nil)
	suite.mockProvider.On("VerifyAccessToken", mock.Anything, "provider-token").Return(ident, nil)
	suite.mockReconcile.On("Signup", mock.Anything, ident, "provider-token", models.RoleWorker).Return(suite.profile, nil)
	suite.mockTokens.On("Issue", mock.Anything, suite.profile).Return(suite.session, nil)

	c, rec := suite.newContext(http.MethodGet, "/v1/auth/oauth/callback?code=auth-code&state=signed-state", "", "", false)
	err := suite.handlers.OAuthCallback(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var resp AuthResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "access-token", resp.AccessToken)
	assert.Equal(suite.T(), models.RoleWorker, resp.User.Role)
}

func (suite *AuthHandlersTestSuite) TestSignup_RequiresBearerToken() {
	c, rec := suite.newContext(http.MethodPost, "/v1/auth/signup", `{"role":"employer"}`, "", false)
	err := suite.handlers.Signup(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.Equal(suite.T(), "unauthenticated", suite.decodeError(rec).Error.Code)
}

func (suite *AuthHandlersTestSuite) TestSignup_Success() {
	ident := &identity.Identity{ID: suite.profileID, Email: suite.profile.Email}
	suite.mockProvider.On("VerifyAccessToken", mock.Anything, "provider-token").Return(ident, nil)
	suite.mockReconcile.On("Signup", mock.Anything, ident, "provider-token", models.RoleEmployer).Return(suite.profile, nil)
	suite.mockTokens.On("Issue", mock.Anything, suite.profile).Return(suite.session, nil)

	c, rec := suite.newContext(http.MethodPost, "/v1/auth/signup", `{"role":"employer"}`, "provider-token", false)
	err := suite.handlers.Signup(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusCreated, rec.Code)

	var resp AuthResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "refresh-token", resp.RefreshToken)
	assert.Equal(suite.T(), suite.profileID, resp.User.ID)
}

func (suite *AuthHandlersTestSuite) TestSignup_AlreadyRegistered() {
	ident := &identity.Identity{ID: suite.profileID, Email: suite.profile.Email}
	suite.mockProvider.On("VerifyAccessToken", mock.Anything, "provider-token").Return(ident, nil)
	suite.mockReconcile.On("Signup", mock.Anything, ident, "provider-token", models.RoleEmployer).
		Return(nil, apperrors.ErrAlreadyRegistered)

	c, rec := suite.newContext(http.MethodPost, "/v1/auth/signup", `{"role":"employer"}`, "provider-token", false)
	err := suite.handlers.Signup(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusConflict, rec.Code)
	assert.Equal(suite.T(), "already_registered", suite.decodeError(rec).Error.Code)
}

func (suite *AuthHandlersTestSuite) TestSignin_RoleMismatchEnvelope() {
	ident := &identity.Identity{ID: suite.profileID, Email: suite.profile.Email}
	suite.mockProvider.On("VerifyAccessToken", mock.Anything, "provider-token").Return(ident, nil)
	suite.mockReconcile.On("Signin", mock.Anything, ident, "provider-token", models.RoleWorker).
		Return(nil, &apperrors.RoleMismatchError{Declared: models.RoleWorker, Actual: models.RoleEmployer})

	c, rec := suite.newContext(http.MethodPost, "/v1/auth/signin", `{"role":"worker"}`, "provider-token", false)
	err := suite.handlers.Signin(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)

	resp := suite.decodeError(rec)
	assert.Equal(suite.T(), "role_mismatch", resp.Error.Code)
	assert.Equal(suite.T(), "worker", resp.Error.Details["declared_role"])
	assert.Equal(suite.T(), "employer", resp.Error.Details["actual_role"])
}

func (suite *AuthHandlersTestSuite) TestSignin_NoAccount() {
	ident := &identity.Identity{ID: suite.profileID, Email: suite.profile.Email}
	suite.mockProvider.On("VerifyAccessToken", mock.Anything, "provider-token").Return(ident, nil)
	suite.mockReconcile.On("Signin", mock.Anything, ident, "provider-token", models.RoleWorker).
		Return(nil, apperrors.ErrNoAccount)

	c, rec := suite.newContext(http.MethodPost, "/v1/auth/signin", `{"role":"worker"}`, "provider-token", false)
	err := suite.handlers.Signin(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), "no_account", suite.decodeError(rec).Error.Code)
}

func (suite *AuthHandlersTestSuite) TestSignin_InvalidProviderToken() {
	suite.mockProvider.On("VerifyAccessToken", mock.Anything, "forged-token").
		Return(nil, assert.AnError)

	c, _ := suite.newContext(http.MethodPost, "/v1/auth/signin", `{"role":"worker"}`, "forged-token", false)
	err := suite.handlers.Signin(c)

	var httpErr *echo.HTTPError
	assert.ErrorAs(suite.T(), err, &httpErr)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
}

func (suite *AuthHandlersTestSuite) TestRefresh_RequiresRefreshTokenGrant() {
	c, rec := suite.newContext(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"refresh-token","grant_type":"password"}`, "", false)
	err := suite.handlers.Refresh(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "validation_error", suite.decodeError(rec).Error.Code)
	suite.mockTokens.AssertNotCalled(suite.T(), "Refresh", mock.Anything, mock.Anything)
}

func (suite *AuthHandlersTestSuite) TestRefresh_InvalidToken() {
	suite.mockTokens.On("Refresh", mock.Anything, "stale-token").Return(nil, assert.AnError)

	c, _ := suite.newContext(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"stale-token","grant_type":"refresh_token"}`, "", false)
	err := suite.handlers.Refresh(c)

	var httpErr *echo.HTTPError
	assert.ErrorAs(suite.T(), err, &httpErr)
	assert.Equal(suite.T(), http.StatusUnauthorized, httpErr.Code)
}

func (suite *AuthHandlersTestSuite) TestRefresh_Success() {
	suite.mockTokens.On("Refresh", mock.Anything, "refresh-token").Return(suite.session, nil)

	c, rec := suite.newContext(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"refresh-token","grant_type":"refresh_token"}`, "", false)
	err := suite.handlers.Refresh(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var resp models.TokenResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "access-token", resp.AccessToken)
}

func (suite *AuthHandlersTestSuite) TestProfile_Success() {
	suite.mockProfiles.On("GetByID", mock.Anything, suite.profileID).Return(suite.profile, nil)

	c, rec := suite.newContext(http.MethodGet, "/v1/auth/profile", "", "access-token", true)
	err := suite.handlers.Profile(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var got models.Profile
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(suite.T(), suite.profile.Email, got.Email)
}

func (suite *AuthHandlersTestSuite) TestProfile_Unauthenticated() {
	c, rec := suite.newContext(http.MethodGet, "/v1/auth/profile", "", "", false)
	err := suite.handlers.Profile(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestSignout_RevokesBothTokens() {
	suite.mockTokens.On("Revoke", mock.Anything, "access-token").Return(nil)
	suite.mockTokens.On("RevokeRefresh", mock.Anything, "refresh-token").Return(nil)

	c, rec := suite.newContext(http.MethodPost, "/v1/auth/signout", `{"refresh_token":"refresh-token"}`, "access-token", true)
	err := suite.handlers.Signout(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *AuthHandlersTestSuite) TestSignout_AccessTokenOnly() {
	suite.mockTokens.On("Revoke", mock.Anything, "access-token").Return(nil)

	c, rec := suite.newContext(http.MethodPost, "/v1/auth/signout", "", "access-token", true)
	err := suite.handlers.Signout(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	suite.mockTokens.AssertNotCalled(suite.T(), "RevokeRefresh", mock.Anything, mock.Anything)
}

func (suite *AuthHandlersTestSuite) TestSignout_Unauthenticated() {
	c, rec := suite.newContext(http.MethodPost, "/v1/auth/signout", "", "access-token", false)
	err := suite.handlers.Signout(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	suite.mockTokens.AssertNotCalled(suite.T(), "Revoke", mock.Anything, mock.Anything)
}
