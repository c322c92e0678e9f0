package handlers

import (
	"net/http"

	"ptime/internal/common"
	"ptime/internal/models"
	"ptime/internal/services"

	"github.com/labstack/echo/v4"
)

// JobHandlers handles job registry HTTP requests
type JobHandlers struct {
	jobService services.JobService
}

// NewJobHandlers creates a new job handlers instance
func NewJobHandlers(jobService services.JobService) *JobHandlers {
	return &JobHandlers{jobService: jobService}
}

// CreateJobRequest represents the job posting payload
type CreateJobRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	HourlyRate  *float64 `json:"hourly_rate"`
}

// UpdateJobRequest represents the job update payload
type UpdateJobRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	HourlyRate  *float64 `json:"hourly_rate"`
	Status      *string  `json:"status"`
}

// ListJobs godoc
// @Summary List active job postings, newest first
// @Tags jobs
// @Produce json
// @Success 200 {array} models.Job
// @Router /jobs [get]
func (h *JobHandlers) ListJobs(c echo.Context) error {
	ctx := c.Request().Context()

	jobs, err := h.jobService.ListActive(ctx)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}

	return c.JSON(http.StatusOK, jobs)
}

// GetJob godoc
// @Summary Get a job posting by ID
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} common.ErrorResponse
// @Router /jobs/{id} [get]
func (h *JobHandlers) GetJob(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	job, err := h.jobService.GetByID(ctx, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, job)
}

// ListMyJobs godoc
// @Summary List the caller's job postings regardless of status
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Job
// @Router /jobs/mine [get]
func (h *JobHandlers) ListMyJobs(c echo.Context) error {
	ctx := c.Request().Context()

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	jobs, err := h.jobService.ListByEmployer(ctx, employerID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}

	return c.JSON(http.StatusOK, jobs)
}

// CreateJob godoc
// @Summary Post a new job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateJobRequest true "Job fields"
// @Success 201 {object} models.Job
// @Failure 400 {object} common.ErrorResponse
// @Router /jobs [post]
func (h *JobHandlers) CreateJob(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Title, "title"); err != nil {
		return common.SendValidationError(c, "title", err.Error())
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	job, err := h.jobService.Create(ctx, employerID, &services.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		HourlyRate:  req.HourlyRate,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, job)
}

// UpdateJob godoc
// @Summary Update one of the caller's job postings
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param request body UpdateJobRequest true "Fields to update"
// @Success 200 {object} models.Job
// @Failure 400 {object} common.ErrorResponse
// @Failure 403 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /jobs/{id} [put]
func (h *JobHandlers) UpdateJob(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	var status *models.JobStatus
	if req.Status != nil {
		s := models.JobStatus(*req.Status)
		if !s.Valid() {
			return common.SendValidationError(c, "status", "status must be one of active, filled, cancelled")
		}
		status = &s
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	job, err := h.jobService.Update(ctx, id, employerID, &services.UpdateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		HourlyRate:  req.HourlyRate,
		Status:      status,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, job)
}

// DeleteJob godoc
// @Summary Delete one of the caller's job postings
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /jobs/{id} [delete]
func (h *JobHandlers) DeleteJob(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	employerID, ok := common.GetProfileIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.jobService.Delete(ctx, id, employerID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Job deleted successfully",
	})
}
