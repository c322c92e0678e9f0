package repositories

import (
	"context"

	"ptime/internal/models"

	"github.com/google/uuid"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *models.Business) error
	GetByID(ctx context.Context, id, employerID uuid.UUID) (*models.Business, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Business, error)
	Update(ctx context.Context, business *models.Business) error
	SoftDelete(ctx context.Context, id, employerID uuid.UUID) error
	SetLogoKey(ctx context.Context, id, employerID uuid.UUID, logoKey string) error
}

type businessRepo struct {
	db Database
}

func NewBusinessRepository(db Database) BusinessRepository {
	return &businessRepo{db: db}
}

const businessColumns = `id, employer_id, name, type, email, phone, address_street, address_city, address_county, address_state, address_zipcode, geo_data, logo_key, is_active, created_at, updated_at`

func scanBusiness(row interface{ Scan(dest ...any) error }) (*models.Business, error) {
	business := &models.Business{}
	err := row.Scan(
		&business.ID, &business.EmployerID, &business.Name, &business.Type,
		&business.Email, &business.Phone,
		&business.AddressStreet, &business.AddressCity, &business.AddressCounty,
		&business.AddressState, &business.AddressZipcode,
		&business.GeoData, &business.LogoKey, &business.IsActive,
		&business.CreatedAt, &business.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return business, nil
}

func (r *businessRepo) Create(ctx context.Context, business *models.Business) error {
	query := `
		INSERT INTO businesses (id, employer_id, name, type, email, phone, address_street, address_city, address_county, address_state, address_zipcode, geo_data, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, TRUE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		business.ID, business.EmployerID, business.Name, business.Type,
		business.Email, business.Phone,
		business.AddressStreet, business.AddressCity, business.AddressCounty,
		business.AddressState, business.AddressZipcode, business.GeoData,
	)
	return err
}

// GetByID is scoped by (id, employer_id) and excludes soft-deleted rows, so
// a business owned by someone else is indistinguishable from a missing one.
func (r *businessRepo) GetByID(ctx context.Context, id, employerID uuid.UUID) (*models.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses
		WHERE id = $1 AND employer_id = $2 AND is_active = TRUE
	`
	return scanBusiness(r.db.QueryRow(ctx, query, id, employerID))
}

func (r *businessRepo) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses
		WHERE employer_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []*models.Business
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, business)
	}
	return businesses, rows.Err()
}

func (r *businessRepo) Update(ctx context.Context, business *models.Business) error {
	query := `
		UPDATE businesses
		SET name = $1, type = $2, email = $3, phone = $4,
		    address_street = $5, address_city = $6, address_county = $7,
		    address_state = $8, address_zipcode = $9, geo_data = $10,
		    updated_at = NOW()
		WHERE id = $11 AND employer_id = $12 AND is_active = TRUE
	`
	_, err := r.db.Exec(ctx, query,
		business.Name, business.Type, business.Email, business.Phone,
		business.AddressStreet, business.AddressCity, business.AddressCounty,
		business.AddressState, business.AddressZipcode, business.GeoData,
		business.ID, business.EmployerID,
	)
	return err
}

func (r *businessRepo) SoftDelete(ctx context.Context, id, employerID uuid.UUID) error {
	query := `
		UPDATE businesses
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND employer_id = $2 AND is_active = TRUE
	`
	_, err := r.db.Exec(ctx, query, id, employerID)
	return err
}

func (r *businessRepo) SetLogoKey(ctx context.Context, id, employerID uuid.UUID, logoKey string) error {
	query := `
		UPDATE businesses
		SET logo_key = $1, updated_at = NOW()
		WHERE id = $2 AND employer_id = $3 AND is_active = TRUE
	`
	_, err := r.db.Exec(ctx, query, logoKey, id, employerID)
	return err
}
