package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/projecthub/internal/domain/entity"
	"github.com/oksasatya/projecthub/internal/domain/repository"
	"github.com/oksasatya/projecthub/pkg/apperr"
)

// ProjectService owns project CRUD and the per-resource ownership
// gate. The role half of authorization happens earlier in middleware;
// handlers thread the resulting privileged flag in here.
type ProjectService struct {
	Projects repository.ProjectRepository
	Logger   *logrus.Logger
	ES       *elasticsearch.Client
	ESIndex  string
}

func NewProjectService(projects repository.ProjectRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ProjectService {
	return &ProjectService{Projects: projects, Logger: logger, ES: es, ESIndex: esIndex}
}

// CreateProjectInput deliberately has no owner field: the owner is
// always the authenticated user, never client-supplied.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput, ownerID string) (*entity.ProjectWithOwner, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "Project name is required")
	}
	status := in.Status
	if status == "" {
		status = entity.StatusPlanning
	}
	if !entity.IsValidStatus(status) {
		return nil, apperr.New(apperr.Validation, "Invalid project status")
	}

	p := &entity.Project{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		OwnerID:     ownerID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if err := s.Projects.Create(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create project", err)
	}

	v, err := s.Projects.GetByID(ctx, p.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load created project", err)
	}
	s.indexProject(ctx, v)
	return v, nil
}

// List returns every project for privileged requesters, otherwise only
// the requester's own, newest first.
func (s *ProjectService) List(ctx context.Context, requesterID string, privileged bool) ([]entity.ProjectWithOwner, error) {
	ownerFilter := requesterID
	if privileged {
		ownerFilter = ""
	}
	out, err := s.Projects.List(ctx, ownerFilter)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list projects", err)
	}
	return out, nil
}

// Get loads a project with its owner expanded. The caller performs the
// ownership check: ownership is only knowable once the resource is
// loaded.
func (s *ProjectService) Get(ctx context.Context, id string) (*entity.ProjectWithOwner, error) {
	v, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "Project not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load project", err)
	}
	return v, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, patch repository.ProjectPatch, requesterID string, privileged bool) (*entity.ProjectWithOwner, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !privileged && existing.Owner.ID != requesterID {
		return nil, apperr.New(apperr.Forbidden, "You do not have permission to update this project")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.New(apperr.Validation, "Project name is required")
		}
		patch.Name = &name
	}
	if patch.Status != nil && !entity.IsValidStatus(*patch.Status) {
		return nil, apperr.New(apperr.Validation, "Invalid project status")
	}

	if !patch.IsZero() {
		if err := s.Projects.Update(ctx, id, patch); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.New(apperr.NotFound, "Project not found")
			}
			return nil, apperr.Wrap(apperr.Internal, "failed to update project", err)
		}
	}

	v, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load updated project", err)
	}
	s.indexProject(ctx, v)
	return v, nil
}

func (s *ProjectService) Delete(ctx context.Context, id, requesterID string, privileged bool) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !privileged && existing.Owner.ID != requesterID {
		return apperr.New(apperr.Forbidden, "You do not have permission to delete this project")
	}
	if err := s.Projects.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.NotFound, "Project not found")
		}
		return apperr.Wrap(apperr.Internal, "failed to delete project", err)
	}
	s.removeFromIndex(ctx, id)
	return nil
}

// indexProject mirrors the project into Elasticsearch, best effort.
func (s *ProjectService) indexProject(ctx context.Context, v *entity.ProjectWithOwner) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          v.ID,
		"name":        v.Name,
		"description": v.Description,
		"status":      v.Status,
		"owner_id":    v.Owner.ID,
		"owner_email": v.Owner.Email,
		"created_at":  v.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  v.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: v.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("project_id", v.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("project_id", v.ID).Warn("es index response error")
	}
}

func (s *ProjectService) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("project_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search runs a multi_match query over name and description. Results
// for non-privileged requesters are filtered to their own projects.
// Returns empty results when search is not configured.
func (s *ProjectService) Search(ctx context.Context, q, requesterID string, privileged bool, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	must := []map[string]any{
		{"multi_match": map[string]any{
			"query":  q,
			"fields": []string{"name^2", "description"},
		}},
	}
	query := map[string]any{"bool": map[string]any{"must": must}}
	if !privileged {
		query["bool"].(map[string]any)["filter"] = []map[string]any{
			{"term": map[string]any{"owner_id": requesterID}},
		}
	}
	body := map[string]any{"query": query, "size": size}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "search failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "search failed", err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
