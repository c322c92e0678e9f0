package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines which dashboard and API routes a profile may use.
type Role string

const (
	RoleWorker   Role = "worker"
	RoleEmployer Role = "employer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleEmployer
}

// Profile binds an external identity to a role. One profile per email,
// created only after the identity provider has confirmed the account.
// The role is immutable after creation.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Employer is the role-specific record created alongside (or on first
// business registration for) a profile with role=employer.
type Employer struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email" db:"email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Worker is the role-specific record for a profile with role=worker.
type Worker struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email" db:"email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
