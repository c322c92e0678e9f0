package handlers

import (
	"net/http"

	"ptime/internal/common"
	"ptime/internal/models"
	"ptime/internal/services"

	"github.com/labstack/echo/v4"
)

// BusinessHandlers handles business registry HTTP requests
type BusinessHandlers struct {
	businessService services.BusinessService
}

// NewBusinessHandlers creates a new business handlers instance
func NewBusinessHandlers(businessService services.BusinessService) *BusinessHandlers {
	return &BusinessHandlers{businessService: businessService}
}

// CreateBusinessRequest represents the business registration payload
type CreateBusinessRequest struct {
	Name           string          `json:"name" validate:"required"`
	Type           string          `json:"type" validate:"required"`
	Email          *string         `json:"email"`
	Phone          *string         `json:"phone"`
	AddressStreet  string          `json:"address_street" validate:"required"`
	AddressCity    string          `json:"address_city" validate:"required"`
	AddressCounty  string          `json:"address_county" validate:"required"`
	AddressState   string          `json:"address_state" validate:"required"`
	AddressZipcode string          `json:"address_zipcode" validate:"required"`
	GeoData        *models.GeoData `json:"geo_data"`
}

// UpdateBusinessRequest represents the business update payload
type UpdateBusinessRequest struct {
	Name           *string         `json:"name"`
	Type           *string         `json:"type"`
	Email          *string         `json:"email"`
	Phone          *string         `json:"phone"`
	AddressStreet  *string         `json:"address_street"`
	AddressCity    *string         `json:"address_city"`
	AddressCounty  *string         `json:"address_county"`
	AddressState   *string         `json:"address_state"`
	AddressZipcode *string         `json:"address_zipcode"`
	GeoData        *models.GeoData `json:"geo_data"`
}

// CreateBusiness godoc
// @Summary Register a business
// @Tags businesses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBusinessRequest true "Business fields"
// @Success 201 {object} models.Business
// @Failure 400 {object} common.ErrorResponse
// @Failure 403 {object} common.ErrorResponse
// @Router /businesses [post]
func (h *BusinessHandlers) CreateBusiness(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateBusinessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.Type, "type"); err != nil {
		return common.SendValidationError(c, "type", err.Error())
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	business, err := h.businessService.Create(ctx, employerID, &services.CreateBusinessInput{
		Name:           req.Name,
		Type:           req.Type,
		Email:          req.Email,
		Phone:          req.Phone,
		AddressStreet:  req.AddressStreet,
		AddressCity:    req.AddressCity,
		AddressCounty:  req.AddressCounty,
		AddressState:   req.AddressState,
		AddressZipcode: req.AddressZipcode,
		GeoData:        req.GeoData,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, business)
}

// ListBusinesses godoc
// @Summary List the caller's active businesses, newest first
// @Tags businesses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Business
// @Router /businesses [get]
func (h *BusinessHandlers) ListBusinesses(c echo.Context) error {
	ctx := c.Request().Context()

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	businesses, err := h.businessService.ListByEmployer(ctx, employerID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if businesses == nil {
		businesses = []*models.Business{}
	}

	return c.JSON(http.StatusOK, businesses)
}

// GetBusiness godoc
// @Summary Get one of the caller's businesses
// @Tags businesses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Business ID"
// @Success 200 {object} models.Business
// @Failure 404 {object} common.ErrorResponse
// @Router /businesses/{id} [get]
func (h *BusinessHandlers) GetBusiness(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	business, err := h.businessService.GetByID(ctx, id, employerID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, business)
}

// UpdateBusiness godoc
// @Summary Update one of the caller's businesses
// @Tags businesses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Business ID"
// @Param request body UpdateBusinessRequest true "Fields to update"
// @Success 200 {object} models.Business
// @Failure 404 {object} common.ErrorResponse
// @Router /businesses/{id} [put]
func (h *BusinessHandlers) UpdateBusiness(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateBusinessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	business, err := h.businessService.Update(ctx, id, employerID, &services.UpdateBusinessInput{
		Name:           req.Name,
		Type:           req.Type,
		Email:          req.Email,
		Phone:          req.Phone,
		AddressStreet:  req.AddressStreet,
		AddressCity:    req.AddressCity,
		AddressCounty:  req.AddressCounty,
		AddressState:   req.AddressState,
		AddressZipcode: req.AddressZipcode,
		GeoData:        req.GeoData,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, business)
}

// DeleteBusiness godoc
// @Summary Soft-delete one of the caller's businesses
// @Tags businesses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Business ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} common.ErrorResponse
// @Router /businesses/{id} [delete]
func (h *BusinessHandlers) DeleteBusiness(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.businessService.SoftDelete(ctx, id, employerID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Business deleted successfully",
	})
}

// UploadLogo godoc
// @Summary Upload a logo for one of the caller's businesses
// @Tags businesses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Business ID"
// @Param logo formData file true "Logo image"
// @Success 200 {object} map[string]string
// @Failure 404 {object} common.ErrorResponse
// @Router /businesses/{id}/logo [post]
func (h *BusinessHandlers) UploadLogo(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return common.SendValidationError(c, "logo", "logo file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.businessService.UploadLogo(ctx, id, employerID, file, fileHeader.Size, contentType); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Logo uploaded successfully",
	})
}

// GetLogoURL godoc
// @Summary Get a presigned URL for a business logo
// @Tags businesses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Business ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} common.ErrorResponse
// @Router /businesses/{id}/logo [get]
func (h *BusinessHandlers) GetLogoURL(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	url, err := h.businessService.LogoURL(ctx, id, employerID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
