package repositories

import (
	"context"

	"ptime/internal/models"

	"github.com/google/uuid"
)

type WorkerRepository interface {
	Create(ctx context.Context, worker *models.Worker) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Worker, error)
}

type workerRepo struct {
	db Database
}

func NewWorkerRepository(db Database) WorkerRepository {
	return &workerRepo{db: db}
}

func (r *workerRepo) Create(ctx context.Context, worker *models.Worker) error {
	query := `
		INSERT INTO workers (user_id, display_name, email, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, worker.UserID, worker.DisplayName, worker.Email)
	return err
}

func (r *workerRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Worker, error) {
	worker := &models.Worker{}
	query := `
		SELECT user_id, display_name, email, created_at
		FROM workers
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&worker.UserID, &worker.DisplayName, &worker.Email, &worker.CreatedAt)
	if err != nil {
		return nil, err
	}
	return worker, nil
}
