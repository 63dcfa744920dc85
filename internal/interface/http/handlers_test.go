package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/projecthub/internal/application"
	"github.com/oksasatya/projecthub/internal/domain/entity"
	"github.com/oksasatya/projecthub/internal/router"
	"github.com/oksasatya/projecthub/internal/router/modules"
	"github.com/oksasatya/projecthub/internal/testutil"
	"github.com/oksasatya/projecthub/pkg/helpers"
	"github.com/oksasatya/projecthub/pkg/validation"
)

var setupOnce sync.Once

type testServer struct {
	engine *gin.Engine
	users  *testutil.FakeUserRepository
	auth   *application.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	users := testutil.NewFakeUserRepository()
	projects := testutil.NewFakeProjectRepository(users)
	jwt := helpers.NewJWTManager("test-secret", time.Hour)

	authSvc := application.NewAuthService(users, jwt, logger, nil)
	projectSvc := application.NewProjectService(projects, logger, nil, "")

	reg := router.NewRegistry(gin.New())
	reg.Add(modules.NewHealthModule())
	reg.Add(modules.NewAuthModule(authSvc))
	reg.Add(modules.NewProjectModule(projectSvc, authSvc))
	reg.Add(modules.NewUserModule(authSvc))
	reg.RegisterAll()

	return &testServer{engine: reg.Engine, users: users, auth: authSvc}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type userJSON struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type projectJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Owner       userJSON `json:"owner"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func (s *testServer) registerAndLogin(t *testing.T, email, password string) (userJSON, string) {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, "register body: %s", w.Body.String())
	var u userJSON
	require.NoError(t, json.Unmarshal(env.Data, &u))

	w, env = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return u, res.Token
}

// loginAsAdmin registers a user, promotes it directly in the store, and
// logs in again so the token carries the admin role.
func (s *testServer) loginAsAdmin(t *testing.T, email string) (userJSON, string) {
	t.Helper()
	u, _ := s.registerAndLogin(t, email, "pw123")
	require.NoError(t, s.users.UpdateRole(context.Background(), u.ID, entity.RoleAdmin))
	res, err := s.auth.Login(context.Background(), email, "pw123")
	require.NoError(t, err)
	u.Role = entity.RoleAdmin
	return u, res.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "API is running", env.Message)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "alice@example.com", "password": "pw123"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User registered successfully", env.Message)

	var u userJSON
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, entity.RoleMember, u.Role)

	// The hash never leaves the server.
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_ClientRoleIgnored(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"email":    "sneaky@example.com",
		"password": "pw123",
		"role":     "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var u userJSON
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, entity.RoleMember, u.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "alice@example.com", "password": "pw123"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "alice@example.com", "password": "other"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User with this email already exists", env.Message)
}

func TestRegister_InvalidEmail(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "not-an-email", "password": "pw123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestLogin_MissingFields(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email and password are required", env.Message)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "alice@example.com", "pw123")

	w, env := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", env.Message)
}

func TestProjects_RequireToken(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", env.Message)
}

func TestProjects_CreateAndGet(t *testing.T) {
	s := newTestServer(t)
	alice, token := s.registerAndLogin(t, "alice@example.com", "pw123")

	// A client-supplied owner is dropped on the floor.
	w, env := s.do(t, http.MethodPost, "/projects", token, gin.H{
		"name":  "Website Redesign",
		"owner": "64a000000000000000000000",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "Project created successfully", env.Message)

	var p projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Website Redesign", p.Name)
	assert.Equal(t, entity.StatusPlanning, p.Status)
	assert.Equal(t, alice.ID, p.Owner.ID)
	assert.Equal(t, "alice@example.com", p.Owner.Email)

	w, env = s.do(t, http.MethodGet, "/projects/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, p.ID, got.ID)
}

func TestProjects_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	_, token := s.registerAndLogin(t, "alice@example.com", "pw123")

	w, env := s.do(t, http.MethodPost, "/projects", token, gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Project name is required", env.Message)

	w, _ = s.do(t, http.MethodPost, "/projects", token, gin.H{"name": "X", "status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_GetNotFound(t *testing.T) {
	s := newTestServer(t)
	_, token := s.registerAndLogin(t, "alice@example.com", "pw123")

	w, env := s.do(t, http.MethodGet, "/projects/64a000000000000000000000", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Project not found", env.Message)
}

func TestProjects_ListScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.registerAndLogin(t, "alice@example.com", "pw123")
	_, bobToken := s.registerAndLogin(t, "bob@example.com", "pw123")

	w, _ := s.do(t, http.MethodPost, "/projects", aliceToken, gin.H{"name": "Alice One"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, http.MethodPost, "/projects", aliceToken, gin.H{"name": "Alice Two"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodGet, "/projects", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 2)
	assert.Equal(t, "Alice Two", mine[0].Name)
	assert.Equal(t, "Alice One", mine[1].Name)

	w, env = s.do(t, http.MethodGet, "/projects", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var theirs []projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &theirs))
	assert.Empty(t, theirs)
}

func TestProjects_CrossUserForbidden(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.registerAndLogin(t, "alice@example.com", "pw123")
	_, bobToken := s.registerAndLogin(t, "bob@example.com", "pw123")

	_, env := s.do(t, http.MethodPost, "/projects", aliceToken, gin.H{"name": "Apollo"})
	var p projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &p))

	w, env := s.do(t, http.MethodGet, "/projects/"+p.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You do not have permission to access this project", env.Message)

	w, env = s.do(t, http.MethodPut, "/projects/"+p.ID, bobToken, gin.H{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You do not have permission to update this project", env.Message)

	w, env = s.do(t, http.MethodDelete, "/projects/"+p.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You do not have permission to delete this project", env.Message)
}

func TestProjects_AdminOverride(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.registerAndLogin(t, "alice@example.com", "pw123")
	_, adminToken := s.loginAsAdmin(t, "admin@example.com")

	_, env := s.do(t, http.MethodPost, "/projects", aliceToken, gin.H{"name": "Apollo"})
	var p projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &p))

	// Admins see everyone's projects.
	w, env := s.do(t, http.MethodGet, "/projects", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 1)

	w, env = s.do(t, http.MethodPut, "/projects/"+p.ID, adminToken, gin.H{"status": entity.StatusCompleted})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project updated successfully", env.Message)
	var updated projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, entity.StatusCompleted, updated.Status)
	assert.Equal(t, p.Owner.ID, updated.Owner.ID)
}

func TestProjects_UpdatePatchSemantics(t *testing.T) {
	s := newTestServer(t)
	_, token := s.registerAndLogin(t, "alice@example.com", "pw123")

	_, env := s.do(t, http.MethodPost, "/projects", token, gin.H{"name": "Apollo", "description": "first cut"})
	var p projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &p))

	w, env := s.do(t, http.MethodPut, "/projects/"+p.ID, token, gin.H{"name": "Apollo 11"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Apollo 11", updated.Name)
	assert.Equal(t, "first cut", updated.Description)
}

func TestProjects_Delete(t *testing.T) {
	s := newTestServer(t)
	_, token := s.registerAndLogin(t, "alice@example.com", "pw123")

	_, env := s.do(t, http.MethodPost, "/projects", token, gin.H{"name": "Apollo"})
	var p projectJSON
	require.NoError(t, json.Unmarshal(env.Data, &p))

	w, env := s.do(t, http.MethodDelete, "/projects/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project deleted successfully", env.Message)

	w, env = s.do(t, http.MethodGet, "/projects/"+p.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Project not found", env.Message)
}

func TestProjects_SearchUnconfigured(t *testing.T) {
	s := newTestServer(t)
	_, token := s.registerAndLogin(t, "alice@example.com", "pw123")

	w, env := s.do(t, http.MethodGet, "/projects/search?q=apollo", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &results))
	assert.Empty(t, results)
}

func TestChangeRole_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	member, memberToken := s.registerAndLogin(t, "member@example.com", "pw123")

	w, env := s.do(t, http.MethodPut, "/users/"+member.ID+"/role", memberToken, gin.H{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", env.Message)
}

func TestChangeRole(t *testing.T) {
	s := newTestServer(t)
	member, _ := s.registerAndLogin(t, "member@example.com", "pw123")
	_, adminToken := s.loginAsAdmin(t, "admin@example.com")

	w, env := s.do(t, http.MethodPut, "/users/"+member.ID+"/role", adminToken, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User role updated successfully", env.Message)
	var u userJSON
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, entity.RoleAdmin, u.Role)
}

func TestChangeRole_InvalidRole(t *testing.T) {
	s := newTestServer(t)
	member, _ := s.registerAndLogin(t, "member@example.com", "pw123")
	_, adminToken := s.loginAsAdmin(t, "admin@example.com")

	w, _ := s.do(t, http.MethodPut, "/users/"+member.ID+"/role", adminToken, gin.H{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeRole_UnknownUser(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.loginAsAdmin(t, "admin@example.com")

	w, env := s.do(t, http.MethodPut, "/users/64a000000000000000000000/role", adminToken, gin.H{"role": "member"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", env.Message)
}
