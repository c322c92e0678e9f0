package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/http/httptest"
	"strings"
	"testing"

	"ptime/internal/apperrors"
	"ptime/internal/common"
	"ptime/internal/models"
	"ptime/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockBusinessService struct {
	mock.Mock
}

func (m *MockBusinessService) Create(ctx context.Context, employerID uuid.UUID, input *services.CreateBusinessInput) (*models.Business, error) {
	args := m.Called(ctx, employerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessService) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Business, error) {
	args := m.Called(ctx, employerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Business), args.Error(1)
}

func (m *MockBusinessService) GetByID(ctx context.Context, id, employerID uuid.UUID) (*models.Business, error) {
	args := m.Called(ctx, id, employerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessService) Update(ctx context.Context, id, employerID uuid.UUID, input *services.UpdateBusinessInput) (*models.Business, error) {
	args := m.Called(ctx, id, employerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessService) SoftDelete(ctx context.Context, id, employerID uuid.UUID) error {
	args := m.Called(ctx, id, employerID)
	return args.Error(0)
}

func (m *MockBusinessService) UploadLogo(ctx context.Context, id, employerID uuid.UUID, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, id, employerID, reader, size, contentType)
	return args.Error(0)
}

func (m *MockBusinessService) LogoURL(ctx context.Context, id, employerID uuid.UUID) (string, error) {
	args := m.Called(ctx, id, employerID)
	return args.String(0), args.Error(1)
}

type BusinessHandlersTestSuite struct {
	suite.Suite
	echo        *echo.Echo
	mockService *MockBusinessService
	handlers    *BusinessHandlers
	employerID  uuid.UUID
}

func (suite *BusinessHandlersTestSuite) SetupTest() {
	suite.echo = echo.New()
	suite.mockService = &MockBusinessService{}
	suite.handlers = NewBusinessHandlers(suite.mockService)
	suite.employerID = uuid.New()

	suite.mockService.Test(suite.T())
}

func (suite *BusinessHandlersTestSuite) TearDownTest() {
	suite.mockService.AssertExpectations(suite.T())
}

func TestBusinessHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(BusinessHandlersTestSuite))
}

func (suite *BusinessHandlersTestSuite) newContext(method, target, body string, authenticated bool) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := suite.echo.NewContext(req, rec)

	if authenticated {
		ctx := common.WithIdentity(req.Context(), suite.employerID, "owner@example.com", models.RoleEmployer)
		c.SetRequest(c.Request().WithContext(ctx))
	}
	return c, rec
}

func (suite *BusinessHandlersTestSuite) TestCreateBusiness_Success() {
	created := &models.Business{ID: uuid.New(), EmployerID: suite.employerID, Name: "Corner Cafe", Type: "hospitality"}
	suite.mockService.On("Create", mock.Anything, suite.employerID, mock.MatchedBy(func(in *services.CreateBusinessInput) bool {
		return in.Name == "Corner Cafe" && in.Type == "hospitality"
	})).Return(created, nil)

	c, rec := suite.newContext(http.MethodPost, "/v1/businesses", `{"name":"Corner Cafe","type":"hospitality"}`, true)
	err := suite.handlers.CreateBusiness(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusCreated, rec.Code)

	var got models.Business
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(suite.T(), "Corner Cafe", got.Name)
}

func (suite *BusinessHandlersTestSuite) TestCreateBusiness_MissingName() {
	c, rec := suite.newContext(http.MethodPost, "/v1/businesses", `{"type":"hospitality"}`, true)
	err := suite.handlers.CreateBusiness(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BusinessHandlersTestSuite) TestCreateBusiness_WorkerProfileRejected() {
	suite.mockService.On("Create", mock.Anything, suite.employerID, mock.Anything).
		Return(nil, apperrors.ErrInvalidEmployer)

	c, rec := suite.newContext(http.MethodPost, "/v1/businesses", `{"name":"Corner Cafe","type":"hospitality"}`, true)
	err := suite.handlers.CreateBusiness(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)

	var resp common.ErrorResponse
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(suite.T(), "invalid_employer", resp.Error.Code)
}

func (suite *BusinessHandlersTestSuite) TestListBusinesses_EmptyListNotNull() {
	suite.mockService.On("ListByEmployer", mock.Anything, suite.employerID).Return([]*models.Business{}, nil)

	c, rec := suite.newContext(http.MethodGet, "/v1/businesses", "", true)
	err := suite.handlers.ListBusinesses(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "[]\n", rec.Body.String())
}

func (suite *BusinessHandlersTestSuite) TestGetBusiness_InvalidID() {
	c, rec := suite.newContext(http.MethodGet, "/v1/businesses/nope", "", true)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	err := suite.handlers.GetBusiness(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *BusinessHandlersTestSuite) TestGetBusiness_OtherOwnerLooksAbsent() {
	id := uuid.New()
	suite.mockService.On("GetByID", mock.Anything, id, suite.employerID).Return(nil, apperrors.ErrNotFound)

	c, rec := suite.newContext(http.MethodGet, "/v1/businesses/"+id.String(), "", true)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err := suite.handlers.GetBusiness(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *BusinessHandlersTestSuite) TestDeleteBusiness_Success() {
	id := uuid.New()
	suite.mockService.On("SoftDelete", mock.Anything, id, suite.employerID).Return(nil)

	c, rec := suite.newContext(http.MethodDelete, "/v1/businesses/"+id.String(), "", true)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err := suite.handlers.DeleteBusiness(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *BusinessHandlersTestSuite) TestUploadLogo_Success() {
	id := uuid.New()
	suite.mockService.On("UploadLogo", mock.Anything, id, suite.employerID, mock.Anything, mock.AnythingOfType("int64"), "image/png").Return(nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="logo"; filename="logo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	assert.NoError(suite.T(), err)
	_, err = part.Write([]byte("png-bytes"))
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/businesses/"+id.String()+"/logo", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := suite.echo.NewContext(req, rec)
	c.SetRequest(c.Request().WithContext(common.WithIdentity(req.Context(), suite.employerID, "owner@example.com", models.RoleEmployer)))
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err = suite.handlers.UploadLogo(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *BusinessHandlersTestSuite) TestGetLogoURL_Success() {
	id := uuid.New()
	suite.mockService.On("LogoURL", mock.Anything, id, suite.employerID).
		Return("https://storage.example.com/ptime-logos/businesses/"+id.String()+"/logo?sig=abc", nil)

	c, rec := suite.newContext(http.MethodGet, "/v1/businesses/"+id.String()+"/logo", "", true)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	err := suite.handlers.GetLogoURL(c)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(suite.T(), resp["url"], "businesses/"+id.String()+"/logo")
}
