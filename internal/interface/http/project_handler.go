package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/projecthub/internal/application"
	"github.com/oksasatya/projecthub/internal/domain/repository"
	"github.com/oksasatya/projecthub/internal/interface/middleware"
	"github.com/oksasatya/projecthub/pkg/apperr"
	"github.com/oksasatya/projecthub/pkg/response"
	"github.com/oksasatya/projecthub/pkg/validation"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Logger: logger}
}

// createProjectRequest has no owner field on purpose: the owner is the
// authenticated user, whatever the request body claims.
type createProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,projectstatus"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// updateProjectRequest mirrors the allow-listed patch: pointer fields
// distinguish "absent" from "set to zero".
type updateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,projectstatus"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// Create POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	project, err := h.Svc.Create(c.Request.Context(), in, user.ID)
	if err != nil {
		status := apperr.Status(err)
		if status == http.StatusInternalServerError {
			// Create failures surface as client errors on this route.
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error(), nil)
		return
	}
	response.Success(c, http.StatusCreated, project, "Project created successfully")
}

// List GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	projects, err := h.Svc.List(c.Request.Context(), user.ID, middleware.Privileged(c))
	if err != nil {
		response.Error(c, apperr.Status(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, projects, "")
}

// Get GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	project, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, apperr.Status(err), err.Error(), nil)
		return
	}
	// Ownership is checked here, once the resource is loaded.
	if !middleware.Privileged(c) && project.Owner.ID != user.ID {
		response.Error(c, http.StatusForbidden, "You do not have permission to access this project", nil)
		return
	}
	response.Success(c, http.StatusOK, project, "")
}

// Update PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	patch := repository.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	project, err := h.Svc.Update(c.Request.Context(), c.Param("id"), patch, user.ID, middleware.Privileged(c))
	if err != nil {
		response.Error(c, apperr.Status(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, project, "Project updated successfully")
}

// Delete DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	err := h.Svc.Delete(c.Request.Context(), c.Param("id"), user.ID, middleware.Privileged(c))
	if err != nil {
		response.Error(c, apperr.Status(err), err.Error(), nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Project deleted successfully")
}

// Search GET /projects/search?q=...&limit=...
func (h *ProjectHandler) Search(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := h.Svc.Search(c.Request.Context(), q, user.ID, middleware.Privileged(c), size)
	if err != nil {
		response.Error(c, apperr.Status(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, results, "")
}
