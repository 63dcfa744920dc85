package entity

import (
	"time"
)

// Project lifecycle statuses.
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on-hold"
)

// IsValidStatus reports whether status is one of the recognized
// project statuses.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

// Project is the stored shape of a project. OwnerID references exactly
// one user and is set server-side at creation.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      string
	OwnerID     string
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerRef is the expanded owner reference joined into project reads,
// the equivalent of populate('owner', 'email role').
type OwnerRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ProjectWithOwner is a project read model with the owner expanded.
type ProjectWithOwner struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Owner       OwnerRef   `json:"owner"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
