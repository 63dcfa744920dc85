package repository

import (
	"context"
	"time"

	"github.com/oksasatya/projecthub/internal/domain/entity"
)

// ProjectPatch is the allow-listed set of fields an update may touch.
// Owner and timestamps are deliberately absent: a patch can never
// reassign a project or rewrite its history.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// IsZero reports whether the patch carries no fields.
func (p ProjectPatch) IsZero() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil &&
		p.StartDate == nil && p.EndDate == nil
}

// ProjectRepository persists project records. Reads return the
// owner-expanded view; List with ownerID == "" returns every project,
// otherwise only those owned by ownerID, newest first.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.ProjectWithOwner, error)
	List(ctx context.Context, ownerID string) ([]entity.ProjectWithOwner, error)
	Update(ctx context.Context, id string, patch ProjectPatch) error
	Delete(ctx context.Context, id string) error
}
