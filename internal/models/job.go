package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a posting.
type JobStatus string

const (
	JobStatusActive    JobStatus = "active"
	JobStatusFilled    JobStatus = "filled"
	JobStatusCancelled JobStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s JobStatus) Valid() bool {
	return s == JobStatusActive || s == JobStatusFilled || s == JobStatusCancelled
}

// CanTransitionTo reports whether a posting may move from s to next.
// Filled and cancelled postings never revert to active, and a cancelled
// posting cannot be marked filled. Same-status updates are a no-op.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case JobStatusActive:
		return next == JobStatusFilled || next == JobStatusCancelled
	case JobStatusFilled:
		return next == JobStatusCancelled
	default:
		return false
	}
}

// Job is a posting owned by an employer profile. Mutation is permitted
// only when the caller's identity equals EmployerID.
type Job struct {
	ID          uuid.UUID `json:"id" db:"id"`
	EmployerID  uuid.UUID `json:"employer_id" db:"employer_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Location    *string   `json:"location" db:"location"`
	HourlyRate  *float64  `json:"hourly_rate" db:"hourly_rate"`
	Status      JobStatus `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
