package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/projecthub/internal/domain/entity"
)

// Sentinel errors shared by repository implementations. Services
// translate these into tagged apperr values at the application layer.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository persists user records. Create assigns ID and
// timestamps on the passed entity.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateRole(ctx context.Context, id, role string) error
}
