package repositories

import (
	"context"
	"errors"

	"ptime/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type EmployerRepository interface {
	Create(ctx context.Context, employer *models.Employer) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Employer, error)
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

type employerRepo struct {
	db Database
}

func NewEmployerRepository(db Database) EmployerRepository {
	return &employerRepo{db: db}
}

func (r *employerRepo) Create(ctx context.Context, employer *models.Employer) error {
	query := `
		INSERT INTO employers (user_id, display_name, email, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, employer.UserID, employer.DisplayName, employer.Email)
	return err
}

func (r *employerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Employer, error) {
	employer := &models.Employer{}
	query := `
		SELECT user_id, display_name, email, created_at
		FROM employers
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&employer.UserID, &employer.DisplayName, &employer.Email, &employer.CreatedAt)
	if err != nil {
		return nil, err
	}
	return employer, nil
}

func (r *employerRepo) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	_, err := r.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
