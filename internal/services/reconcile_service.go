package services

import (
	"context"
	"errors"
	"log"

	"ptime/internal/apperrors"
	"ptime/internal/common"
	"ptime/internal/identity"
	"ptime/internal/models"
	"ptime/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// ReconcileService bridges a confirmed external identity to an internal
// profile, enforcing the declared signup/signin intent and the
// role-consistency invariants. Every rejection signs the caller out of
// the identity provider first, so no authenticated-but-invalid state
// survives a page reload.
type ReconcileService interface {
	Signup(ctx context.Context, ident *identity.Identity, providerToken string, role models.Role) (*models.Profile, error)
	Signin(ctx context.Context, ident *identity.Identity, providerToken string, declaredRole models.Role) (*models.Profile, error)
}

type reconcileService struct {
	db       repositories.TxStarter
	profiles repositories.ProfileRepository
	provider identity.Provider
}

func NewReconcileService(db repositories.TxStarter, profiles repositories.ProfileRepository, provider identity.Provider) ReconcileService {
	return &reconcileService{
		db:       db,
		profiles: profiles,
		provider: provider,
	}
}

// Signup creates the profile and its role-specific record in one
// transaction. The original two-step write could leave a profile with no
// matching role row; here a role-record failure rolls back the profile.
func (s *reconcileService) Signup(ctx context.Context, ident *identity.Identity, providerToken string, role models.Role) (*models.Profile, error) {
	existing, err := s.profiles.GetByEmail(ctx, ident.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Upstream(err)
	}
	if existing != nil {
		s.signOutProvider(ctx, providerToken)
		return nil, apperrors.ErrAlreadyRegistered
	}

	profile := &models.Profile{
		ID:    ident.ID,
		Email: ident.Email,
		Role:  role,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.signOutProvider(ctx, providerToken)
		return nil, apperrors.Upstream(err)
	}
	defer tx.Rollback(ctx)

	if err := repositories.NewProfileRepository(tx).Create(ctx, profile); err != nil {
		s.signOutProvider(ctx, providerToken)
		return nil, apperrors.Upstream(err)
	}

	displayName := common.EmailLocalPart(ident.Email)
	switch role {
	case models.RoleEmployer:
		err = repositories.NewEmployerRepository(tx).Create(ctx, &models.Employer{
			UserID:      ident.ID,
			DisplayName: displayName,
			Email:       ident.Email,
		})
	case models.RoleWorker:
		err = repositories.NewWorkerRepository(tx).Create(ctx, &models.Worker{
			UserID:      ident.ID,
			DisplayName: displayName,
			Email:       ident.Email,
		})
	default:
		s.signOutProvider(ctx, providerToken)
		return nil, apperrors.ErrForbidden
	}
	if err != nil {
		s.signOutProvider(ctx, providerToken)
		return nil, apperrors.Upstream(err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.signOutProvider(ctx, providerToken)
		return nil, apperrors.Upstream(err)
	}

	return s.fetchCreated(ctx, profile)
}

// Signin accepts the identity only when a profile exists for the email
// and its role matches the one the client declared before the redirect.
func (s *reconcileService) Signin(ctx context.Context, ident *identity.Identity, providerToken string, declaredRole models.Role) (*models.Profile, error) {
	profile, err := s.profiles.GetByEmail(ctx, ident.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.signOutProvider(ctx, providerToken)
			return nil, apperrors.ErrNoAccount
		}
		return nil, apperrors.Upstream(err)
	}

	if profile.Role != declaredRole {
		s.signOutProvider(ctx, providerToken)
		return nil, &apperrors.RoleMismatchError{Declared: declaredRole, Actual: profile.Role}
	}

	return profile, nil
}

// fetchCreated re-reads the committed profile so the caller gets the
// database-assigned timestamps.
func (s *reconcileService) fetchCreated(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	created, err := s.profiles.GetByID(ctx, profile.ID)
	if err != nil {
		log.Printf("Failed to re-read created profile %s: %v", profile.ID, err)
		return profile, nil
	}
	return created, nil
}

func (s *reconcileService) signOutProvider(ctx context.Context, providerToken string) {
	if err := s.provider.SignOut(ctx, providerToken); err != nil {
		log.Printf("Failed to terminate provider session: %v", err)
	}
}
