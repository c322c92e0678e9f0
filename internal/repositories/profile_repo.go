package repositories

import (
	"context"

	"ptime/internal/models"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
}

type profileRepo struct {
	db Database
}

func NewProfileRepository(db Database) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO user_profiles (id, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.Email, profile.Role)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, email, role, created_at, updated_at
		FROM user_profiles
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, email, role, created_at, updated_at
		FROM user_profiles
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	query := `
		UPDATE user_profiles
		SET email = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, email, id)
	return err
}
