package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"ptime/internal/apperrors"
	"ptime/internal/common"
	"ptime/internal/models"
	"ptime/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateBusinessInput carries the registration fields.
type CreateBusinessInput struct {
	Name           string
	Type           string
	Email          *string
	Phone          *string
	AddressStreet  string
	AddressCity    string
	AddressCounty  string
	AddressState   string
	AddressZipcode string
	GeoData        *models.GeoData
}

// UpdateBusinessInput carries optional replacement fields; nil means keep.
type UpdateBusinessInput struct {
	Name           *string
	Type           *string
	Email          *string
	Phone          *string
	AddressStreet  *string
	AddressCity    *string
	AddressCounty  *string
	AddressState   *string
	AddressZipcode *string
	GeoData        *models.GeoData
}

type BusinessService interface {
	Create(ctx context.Context, employerID uuid.UUID, input *CreateBusinessInput) (*models.Business, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Business, error)
	GetByID(ctx context.Context, id, employerID uuid.UUID) (*models.Business, error)
	Update(ctx context.Context, id, employerID uuid.UUID, input *UpdateBusinessInput) (*models.Business, error)
	SoftDelete(ctx context.Context, id, employerID uuid.UUID) error
	UploadLogo(ctx context.Context, id, employerID uuid.UUID, reader io.Reader, size int64, contentType string) error
	LogoURL(ctx context.Context, id, employerID uuid.UUID) (string, error)
}

type businessService struct {
	businessRepo repositories.BusinessRepository
	employerRepo repositories.EmployerRepository
	profileRepo  repositories.ProfileRepository
	storage      StorageService
	logoBucket   string
}

func NewBusinessService(businessRepo repositories.BusinessRepository, employerRepo repositories.EmployerRepository, profileRepo repositories.ProfileRepository, storage StorageService, logoBucket string) BusinessService {
	return &businessService{
		businessRepo: businessRepo,
		employerRepo: employerRepo,
		profileRepo:  profileRepo,
		storage:      storage,
		logoBucket:   logoBucket,
	}
}

func (s *businessService) Create(ctx context.Context, employerID uuid.UUID, input *CreateBusinessInput) (*models.Business, error) {
	if input.Name == "" {
		return nil, apperrors.Validation("name", "business name is required")
	}
	if input.Type == "" {
		return nil, apperrors.Validation("type", "business type is required")
	}

	if err := s.ensureEmployerExists(ctx, employerID); err != nil {
		return nil, err
	}

	business := &models.Business{
		ID:             uuid.New(),
		EmployerID:     employerID,
		Name:           input.Name,
		Type:           input.Type,
		Email:          input.Email,
		Phone:          input.Phone,
		AddressStreet:  input.AddressStreet,
		AddressCity:    input.AddressCity,
		AddressCounty:  input.AddressCounty,
		AddressState:   input.AddressState,
		AddressZipcode: input.AddressZipcode,
		GeoData:        input.GeoData,
		IsActive:       true,
	}

	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, apperrors.Upstream(err)
	}

	return s.businessRepo.GetByID(ctx, business.ID, employerID)
}

func (s *businessService) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Business, error) {
	businesses, err := s.businessRepo.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return businesses, nil
}

func (s *businessService) GetByID(ctx context.Context, id, employerID uuid.UUID) (*models.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, id, employerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("business %w", apperrors.ErrNotFound)
		}
		return nil, apperrors.Upstream(err)
	}
	return business, nil
}

func (s *businessService) Update(ctx context.Context, id, employerID uuid.UUID, input *UpdateBusinessInput) (*models.Business, error) {
	business, err := s.GetByID(ctx, id, employerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		business.Name = *input.Name
	}
	if input.Type != nil {
		business.Type = *input.Type
	}
	if input.Email != nil {
		business.Email = input.Email
	}
	if input.Phone != nil {
		business.Phone = input.Phone
	}
	if input.AddressStreet != nil {
		business.AddressStreet = *input.AddressStreet
	}
	if input.AddressCity != nil {
		business.AddressCity = *input.AddressCity
	}
	if input.AddressCounty != nil {
		business.AddressCounty = *input.AddressCounty
	}
	if input.AddressState != nil {
		business.AddressState = *input.AddressState
	}
	if input.AddressZipcode != nil {
		business.AddressZipcode = *input.AddressZipcode
	}
	if input.GeoData != nil {
		business.GeoData = input.GeoData
	}

	if business.Name == "" {
		return nil, apperrors.Validation("name", "business name is required")
	}

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, apperrors.Upstream(err)
	}

	return s.businessRepo.GetByID(ctx, id, employerID)
}

func (s *businessService) SoftDelete(ctx context.Context, id, employerID uuid.UUID) error {
	// Verify ownership first; a non-owner sees NotFound, never a hint
	// that the business exists.
	if _, err := s.GetByID(ctx, id, employerID); err != nil {
		return err
	}
	if err := s.businessRepo.SoftDelete(ctx, id, employerID); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

func (s *businessService) UploadLogo(ctx context.Context, id, employerID uuid.UUID, reader io.Reader, size int64, contentType string) error {
	if _, err := s.GetByID(ctx, id, employerID); err != nil {
		return err
	}

	objectName := fmt.Sprintf("businesses/%s/logo", id)
	if err := s.storage.UploadObject(ctx, s.logoBucket, objectName, reader, size, contentType); err != nil {
		return apperrors.Upstream(err)
	}
	if err := s.businessRepo.SetLogoKey(ctx, id, employerID, objectName); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}

func (s *businessService) LogoURL(ctx context.Context, id, employerID uuid.UUID) (string, error) {
	business, err := s.GetByID(ctx, id, employerID)
	if err != nil {
		return "", err
	}
	if business.LogoKey == nil {
		return "", fmt.Errorf("logo %w", apperrors.ErrNotFound)
	}
	url, err := s.storage.GetPresignedURL(s.logoBucket, *business.LogoKey, 15*time.Minute)
	if err != nil {
		return "", apperrors.Upstream(err)
	}
	return url, nil
}

// ensureEmployerExists auto-provisions the employer record on first
// business registration. A profile that is missing or not an employer
// is rejected with InvalidEmployer.
func (s *businessService) ensureEmployerExists(ctx context.Context, employerID uuid.UUID) error {
	exists, err := s.employerRepo.Exists(ctx, employerID)
	if err != nil {
		return apperrors.Upstream(err)
	}
	if exists {
		return nil
	}

	profile, err := s.profileRepo.GetByID(ctx, employerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrInvalidEmployer
		}
		return apperrors.Upstream(err)
	}
	if profile.Role != models.RoleEmployer {
		return apperrors.ErrInvalidEmployer
	}

	employer := &models.Employer{
		UserID:      employerID,
		DisplayName: common.EmailLocalPart(profile.Email),
		Email:       profile.Email,
	}
	if err := s.employerRepo.Create(ctx, employer); err != nil {
		return apperrors.Upstream(err)
	}
	return nil
}
