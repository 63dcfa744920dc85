package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/projecthub/internal/domain/entity"
	"github.com/oksasatya/projecthub/internal/domain/repository"
)

// FakeUserRepository is an in-memory repository.UserRepository for
// tests that do not need a running database.
type FakeUserRepository struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: make(map[string]entity.User)}
}

func (r *FakeUserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.users {
		if existing.Email == email {
			return repository.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID().Hex()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

func (r *FakeUserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *FakeUserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *FakeUserRepository) UpdateRole(_ context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

// Delete removes a user directly, for tests covering tokens whose
// account no longer exists.
func (r *FakeUserRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

var _ repository.UserRepository = (*FakeUserRepository)(nil)

type storedProject struct {
	entity.Project
	seq int
}

// FakeProjectRepository is an in-memory repository.ProjectRepository.
// Owner expansion is resolved against the paired user repository, the
// same join the mongo implementation does with $lookup.
type FakeProjectRepository struct {
	mu       sync.Mutex
	projects map[string]storedProject
	users    *FakeUserRepository
	seq      int
}

func NewFakeProjectRepository(users *FakeUserRepository) *FakeProjectRepository {
	return &FakeProjectRepository{projects: make(map[string]storedProject), users: users}
}

func (r *FakeProjectRepository) expand(p entity.Project) entity.ProjectWithOwner {
	v := entity.ProjectWithOwner{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if u, err := r.users.GetByID(context.Background(), p.OwnerID); err == nil {
		v.Owner = entity.OwnerRef{ID: u.ID, Email: u.Email, Role: u.Role}
	} else {
		v.Owner = entity.OwnerRef{ID: p.OwnerID}
	}
	return v
}

func (r *FakeProjectRepository) Create(_ context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p.ID = primitive.NewObjectID().Hex()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.seq++
	r.projects[p.ID] = storedProject{Project: *p, seq: r.seq}
	return nil
}

func (r *FakeProjectRepository) GetByID(_ context.Context, id string) (*entity.ProjectWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := r.expand(p.Project)
	return &v, nil
}

func (r *FakeProjectRepository) List(_ context.Context, ownerID string) ([]entity.ProjectWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]storedProject, 0, len(r.projects))
	for _, p := range r.projects {
		if ownerID != "" && p.OwnerID != ownerID {
			continue
		}
		stored = append(stored, p)
	}
	// Newest first; insertion order breaks created-at ties.
	sort.Slice(stored, func(i, j int) bool {
		if stored[i].CreatedAt.Equal(stored[j].CreatedAt) {
			return stored[i].seq > stored[j].seq
		}
		return stored[i].CreatedAt.After(stored[j].CreatedAt)
	})

	out := make([]entity.ProjectWithOwner, 0, len(stored))
	for _, p := range stored {
		out = append(out, r.expand(p.Project))
	}
	return out, nil
}

func (r *FakeProjectRepository) Update(_ context.Context, id string, patch repository.ProjectPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		p.EndDate = patch.EndDate
	}
	p.UpdatedAt = time.Now().UTC()
	r.projects[id] = p
	return nil
}

func (r *FakeProjectRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

var _ repository.ProjectRepository = (*FakeProjectRepository)(nil)
