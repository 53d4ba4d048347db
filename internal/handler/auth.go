package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/config"
	"github.com/iliyamo/colocetudiant/internal/middleware"
	"github.com/iliyamo/colocetudiant/internal/model"
	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/session"
	"github.com/iliyamo/colocetudiant/internal/utils"
	"github.com/iliyamo/colocetudiant/internal/validation"
)

const (
	msgProfileMissing     = "Profil utilisateur introuvable dans la base de données."
	msgUsersTableMissing  = "La table 'users' n'existe pas encore. Veuillez d'abord l'initialiser via la page d'inscription."
	msgInvalidCredentials = "Email ou mot de passe incorrect."
	msgEmailTaken         = "Un compte existe déjà avec cet email."
)

// AuthHandler bundles dependencies for sign-up, sign-in and sessions.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *session.Manager
	Log      *zap.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *session.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Log: log}
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Access  tokenPart     `json:"access"`
	Session session.State `json:"session"`
}

// startSession opens a session slot for u and signs a token bound to it.
func (h *AuthHandler) startSession(c echo.Context, u model.User, status int) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	sid, st, err := h.Sessions.Login(ctx, u)
	if err != nil {
		h.Log.Error("session login failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgGenericError})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), sid, h.Cfg.AccessTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgGenericError})
	}
	return c.JSON(status, authResp{
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Session: st,
	})
}

// Register creates a tenant account with the default profile and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return invalid(c, msgInvalidBody, nil)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	v := validation.Violations{}
	validation.Required("email", req.Email, v)
	validation.Required("username", req.Username, v)
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		v["email"] = "invalid_value"
	}
	if err := utils.CheckPassword(req.Password); err != nil {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		return invalid(c, "Veuillez corriger les champs indiqués.", v)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	profile := model.DefaultProfile()
	u, err := h.Users.Create(ctx, model.User{
		Email: req.Email, Username: req.Username, Role: model.RoleUser, Profile: &profile,
	}, req.Password, h.Cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": msgEmailTaken})
	}
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/auth/register", msgGenericError)
	}
	h.Log.Info("user registered", zap.String("user_id", u.ID))
	return h.startSession(c, u, http.StatusCreated)
}

// Login verifies the credentials, then loads the full user record.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return invalid(c, msgInvalidBody, nil)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email et mot de passe requis."})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	acc, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrStorageNotInitialized) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": errStorageNotReady, "message": msgUsersTableMissing})
	}
	if err != nil {
		h.Log.Error("login lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgGenericError})
	}
	if acc == nil || !utils.VerifyPassword(acc.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidCredentials})
	}

	u, err := h.Users.GetByID(ctx, acc.User.ID)
	if errors.Is(err, repository.ErrStorageNotInitialized) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": errStorageNotReady, "message": msgUsersTableMissing})
	}
	if err != nil {
		h.Log.Error("login profile load failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgGenericError})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msgProfileMissing})
	}
	return h.startSession(c, *u, http.StatusOK)
}

// Logout clears the session slot of the caller. The token stops working
// immediately even though it has not expired.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Sessions.Logout(ctx, middleware.SessionID(c)); err != nil {
		h.Log.Warn("logout failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgGenericError})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the session state, anonymous callers included.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.State(c))
}

// ListUsers is the admin listing of every account.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/users", msgGenericError)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": users})
}
