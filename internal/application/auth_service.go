package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/projecthub/internal/domain/entity"
	"github.com/oksasatya/projecthub/internal/domain/repository"
	"github.com/oksasatya/projecthub/pkg/apperr"
	"github.com/oksasatya/projecthub/pkg/helpers"
	"github.com/oksasatya/projecthub/pkg/mailer"
)

// AuthService registers users, authenticates credentials, and issues
// and verifies bearer tokens.
type AuthService struct {
	Users  repository.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
	Pub    *helpers.RabbitPublisher
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger, pub *helpers.RabbitPublisher) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger, Pub: pub}
}

// LoginResult pairs the password-stripped user with the signed token.
type LoginResult struct {
	User  entity.UserView `json:"user"`
	Token string          `json:"token"`
}

// Register creates a new member account. The role is never taken from
// the caller: every registration is a member, and promotion happens
// through the admin-only role endpoint.
func (s *AuthService) Register(ctx context.Context, email, password string) (entity.UserView, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.Users.GetByEmail(ctx, email)
	if err == nil {
		return entity.UserView{}, apperr.New(apperr.Conflict, "User with this email already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return entity.UserView{}, apperr.Wrap(apperr.Internal, "failed to check existing user", err)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return entity.UserView{}, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	u := &entity.User{Email: email, Password: hash, Role: entity.RoleMember}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return entity.UserView{}, apperr.New(apperr.Conflict, "User with this email already exists")
		}
		return entity.UserView{}, apperr.Wrap(apperr.Internal, "failed to create user", err)
	}

	s.publishWelcome(ctx, u)
	return u.View(), nil
}

// publishWelcome enqueues a welcome email when a publisher is wired.
// Registration never fails because the broker is down.
func (s *AuthService) publishWelcome(ctx context.Context, u *entity.User) {
	if s.Pub == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: "welcome",
		Data:     map[string]any{"email": u.Email},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("welcome email publish failed")
	}
}

// Login verifies credentials and issues a token. Unknown email and bad
// password return the identical message so callers cannot probe which
// check failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperr.New(apperr.Unauthorized, "Invalid credentials")
	}

	token, _, err := s.JWT.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("token generation failed")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to generate token", err)
	}
	return &LoginResult{User: u.View(), Token: token}, nil
}

// VerifyToken validates signature and expiry and returns the claims.
func (s *AuthService) VerifyToken(token string) (*helpers.Claims, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthorized, "Invalid or expired token", err)
	}
	return claims, nil
}

// GetUserByID loads a user for authorization checks.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}
	return u, nil
}

// ChangeRole assigns a new role to the user. Route-level guards
// restrict this to admins.
func (s *AuthService) ChangeRole(ctx context.Context, id, role string) (entity.UserView, error) {
	if !entity.IsValidRole(role) {
		return entity.UserView{}, apperr.New(apperr.Validation, "Role must be admin or member")
	}
	if err := s.Users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.UserView{}, apperr.New(apperr.NotFound, "User not found")
		}
		return entity.UserView{}, apperr.Wrap(apperr.Internal, "failed to update role", err)
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return entity.UserView{}, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}
	return u.View(), nil
}
