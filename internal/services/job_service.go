package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ptime/internal/apperrors"
	"ptime/internal/caching"
	"ptime/internal/models"
	"ptime/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const activeJobsCacheTTL = 60 * time.Second

// CreateJobInput carries the posting fields.
type CreateJobInput struct {
	Title       string
	Description *string
	Location    *string
	HourlyRate  *float64
}

// UpdateJobInput carries optional replacement fields; nil means keep.
type UpdateJobInput struct {
	Title       *string
	Description *string
	Location    *string
	HourlyRate  *float64
	Status      *models.JobStatus
}

type JobService interface {
	Create(ctx context.Context, employerID uuid.UUID, input *CreateJobInput) (*models.Job, error)
	ListActive(ctx context.Context) ([]*models.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Job, error)
	Update(ctx context.Context, id, employerID uuid.UUID, input *UpdateJobInput) (*models.Job, error)
	Delete(ctx context.Context, id, employerID uuid.UUID) error
}

type jobService struct {
	jobRepo  repositories.JobRepository
	cacheSvc caching.CacheService
}

func NewJobService(jobRepo repositories.JobRepository, cacheSvc caching.CacheService) JobService {
	return &jobService{
		jobRepo:  jobRepo,
		cacheSvc: cacheSvc,
	}
}

func (s *jobService) Create(ctx context.Context, employerID uuid.UUID, input *CreateJobInput) (*models.Job, error) {
	if input.Title == "" {
		return nil, apperrors.Validation("title", "job title is required")
	}
	if input.HourlyRate != nil && *input.HourlyRate < 0 {
		return nil, apperrors.Validation("hourly_rate", "hourly rate cannot be negative")
	}

	job := &models.Job{
		ID:          uuid.New(),
		EmployerID:  employerID,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		HourlyRate:  input.HourlyRate,
		Status:      models.JobStatusActive,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, apperrors.Upstream(err)
	}

	s.invalidateListing(ctx)
	return s.jobRepo.GetByID(ctx, job.ID)
}

// ListActive is the public board: active postings, newest first. Served
// from the cache when warm.
func (s *jobService) ListActive(ctx context.Context) ([]*models.Job, error) {
	cached, err := s.cacheSvc.GetActiveJobs(ctx)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil {
		log.Printf("Job listing cache read failed: %v", err)
	}

	jobs, err := s.jobRepo.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}

	if err := s.cacheSvc.SetActiveJobs(ctx, jobs, activeJobsCacheTTL); err != nil {
		log.Printf("Job listing cache write failed: %v", err)
	}
	return jobs, nil
}

func (s *jobService) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %w", apperrors.ErrNotFound)
		}
		return nil, apperrors.Upstream(err)
	}
	return job, nil
}

func (s *jobService) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Job, error) {
	jobs, err := s.jobRepo.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return jobs, nil
}

// Update re-fetches the job and compares owners before any mutation:
// absent means NotFound, another owner means Forbidden.
func (s *jobService) Update(ctx context.Context, id, employerID uuid.UUID, input *UpdateJobInput) (*models.Job, error) {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employerID {
		return nil, fmt.Errorf("%w: you can only update your own jobs", apperrors.ErrForbidden)
	}

	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidStatusTransition, *input.Status)
		}
		if !job.Status.CanTransitionTo(*input.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidStatusTransition, job.Status, *input.Status)
		}
		job.Status = *input.Status
	}
	if input.Title != nil {
		job.Title = *input.Title
	}
	if input.Description != nil {
		job.Description = input.Description
	}
	if input.Location != nil {
		job.Location = input.Location
	}
	if input.HourlyRate != nil {
		if *input.HourlyRate < 0 {
			return nil, apperrors.Validation("hourly_rate", "hourly rate cannot be negative")
		}
		job.HourlyRate = input.HourlyRate
	}

	if job.Title == "" {
		return nil, apperrors.Validation("title", "job title is required")
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, apperrors.Upstream(err)
	}

	s.invalidateListing(ctx)
	return s.jobRepo.GetByID(ctx, id)
}

func (s *jobService) Delete(ctx context.Context, id, employerID uuid.UUID) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.EmployerID != employerID {
		return fmt.Errorf("%w: you can only delete your own jobs", apperrors.ErrForbidden)
	}

	if err := s.jobRepo.Delete(ctx, id, employerID); err != nil {
		return apperrors.Upstream(err)
	}

	s.invalidateListing(ctx)
	return nil
}

func (s *jobService) invalidateListing(ctx context.Context) {
	if err := s.cacheSvc.InvalidateActiveJobs(ctx); err != nil {
		log.Printf("Job listing cache invalidation failed: %v", err)
	}
}
