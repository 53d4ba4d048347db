package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/ai"
	"github.com/iliyamo/colocetudiant/internal/config"
	"github.com/iliyamo/colocetudiant/internal/handler"
	"github.com/iliyamo/colocetudiant/internal/middleware"
	"github.com/iliyamo/colocetudiant/internal/model"
	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/service"
	"github.com/iliyamo/colocetudiant/internal/session"
	"github.com/iliyamo/colocetudiant/internal/utils"
	"github.com/iliyamo/colocetudiant/internal/ws"
)

const secret = "router-secret"

type users map[string]model.User

func (u users) GetByID(_ context.Context, id string) (*model.User, error) {
	if v, ok := u[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func newServer(t *testing.T, known users) (*echo.Echo, sqlmock.Sqlmock, *session.Manager) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	mgr := session.NewManager(session.NewMemoryStore(), known, time.Hour, log)
	cache := middleware.NewResponseCache(config.CacheConfig{}, nil)
	userRepo := repository.NewUserRepo(db)
	h := Handlers{
		Auth: handler.NewAuthHandler(config.Config{JWTSecret: secret, AccessTTL: time.Hour}, userRepo, mgr, log),
		Annonces: &handler.AnnonceHandler{
			Annonces: repository.NewAnnonceRepo(db), AI: ai.NewClient(nil, log),
			Cache: cache, Publisher: service.NopPublisher{}, Log: log,
		},
		Profile:   &handler.ProfileHandler{Users: userRepo, Sessions: mgr, Log: log},
		Messages:  &handler.MessageHandler{Messages: repository.NewMessageRepo(db), Hub: ws.NewHub(log), Publisher: service.NopPublisher{}, Log: log},
		Household: &handler.HouseholdHandler{Tasks: repository.NewTaskRepo(db), Expenses: repository.NewExpenseRepo(db), Log: log},
	}
	e := echo.New()
	Register(e, h, Options{
		Auth:  middleware.Auth{Secret: secret, Sessions: mgr, Log: log},
		Cache: cache,
		Log:   log,
	})
	return e, mock, mgr
}

func bearer(t *testing.T, mgr *session.Manager, u model.User) string {
	t.Helper()
	sid, _, err := mgr.Login(context.Background(), u)
	require.NoError(t, err)
	tok, err := utils.NewAccessToken(secret, u.ID, string(u.Role), sid, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func get(e *echo.Echo, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	e, _, _ := newServer(t, users{})
	assert.Equal(t, http.StatusOK, get(e, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, get(e, "/v1/annonces/draft", "").Code)

	rec := get(e, "/v1/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":null,"is_authenticated":false}`, rec.Body.String())
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	e, _, _ := newServer(t, users{})
	for _, path := range []string{"/v1/profile", "/v1/messages", "/v1/tasks", "/v1/expenses", "/v1/users"} {
		assert.Equal(t, http.StatusUnauthorized, get(e, path, "").Code, path)
	}
}

func TestUsersListIsAdminOnly(t *testing.T) {
	tenant := model.User{ID: "u1", Username: "alice", Role: model.RoleUser}
	owner := model.User{ID: "u2", Username: "omar", Role: model.RoleAdmin}
	e, mock, mgr := newServer(t, users{"u1": tenant, "u2": owner})

	assert.Equal(t, http.StatusForbidden, get(e, "/v1/users", bearer(t, mgr, tenant)).Code)

	mock.ExpectQuery("FROM users ORDER BY created_at").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "username", "role", "profile", "created_at"}).
			AddRow("u2", "omar@x.fr", "omar", "admin", nil, time.Now()))
	rec := get(e, "/v1/users", bearer(t, mgr, owner))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleComesFromCurrentRecord(t *testing.T) {
	known := users{"u1": {ID: "u1", Username: "alice", Role: model.RoleAdmin}}
	e, _, mgr := newServer(t, known)
	auth := bearer(t, mgr, known["u1"])

	// demoted after sign-in
	known["u1"] = model.User{ID: "u1", Username: "alice", Role: model.RoleUser}
	assert.Equal(t, http.StatusForbidden, get(e, "/v1/users", auth).Code)
}
