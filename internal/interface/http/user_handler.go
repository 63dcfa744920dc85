package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/projecthub/internal/application"
	"github.com/oksasatya/projecthub/pkg/apperr"
	"github.com/oksasatya/projecthub/pkg/response"
	"github.com/oksasatya/projecthub/pkg/validation"
)

// UserHandler exposes admin-only user management. Role assignment
// lives here, not in registration, so no caller can self-escalate.
type UserHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required,userrole"`
}

// ChangeRole PUT /users/:id/role (admin only)
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	user, err := h.Svc.ChangeRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		response.Error(c, apperr.Status(err), err.Error(), nil)
		return
	}
	if h.Logger != nil {
		h.Logger.WithField("user_id", user.ID).WithField("role", user.Role).Info("user role changed")
	}
	response.Success(c, http.StatusOK, user, "User role updated successfully")
}
