package repositories

import (
	"context"

	"ptime/internal/models"

	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListActive(ctx context.Context) ([]*models.Job, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id, employerID uuid.UUID) error
}

type jobRepo struct {
	db Database
}

func NewJobRepository(db Database) JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `id, employer_id, title, description, location, hourly_rate, status, created_at, updated_at`

func scanJob(row interface{ Scan(dest ...any) error }) (*models.Job, error) {
	job := &models.Job{}
	err := row.Scan(
		&job.ID, &job.EmployerID, &job.Title, &job.Description,
		&job.Location, &job.HourlyRate, &job.Status,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, employer_id, title, description, location, hourly_rate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		job.ID, job.EmployerID, job.Title, job.Description,
		job.Location, job.HourlyRate, job.Status,
	)
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE id = $1
	`
	return scanJob(r.db.QueryRow(ctx, query, id))
}

func (r *jobRepo) ListActive(ctx context.Context) ([]*models.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = 'active'
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE employer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs
		SET title = $1, description = $2, location = $3, hourly_rate = $4, status = $5, updated_at = NOW()
		WHERE id = $6 AND employer_id = $7
	`
	_, err := r.db.Exec(ctx, query,
		job.Title, job.Description, job.Location, job.HourlyRate, job.Status,
		job.ID, job.EmployerID,
	)
	return err
}

func (r *jobRepo) Delete(ctx context.Context, id, employerID uuid.UUID) error {
	query := `DELETE FROM jobs WHERE id = $1 AND employer_id = $2`
	_, err := r.db.Exec(ctx, query, id, employerID)
	return err
}
