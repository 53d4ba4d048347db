package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/middleware"
	"github.com/iliyamo/colocetudiant/internal/model"
	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/session"
	"github.com/iliyamo/colocetudiant/internal/validation"
)

const maxBudget = 10000

// ProfileHandler reads and edits the roommate profile of the session user.
type ProfileHandler struct {
	Users    *repository.UserRepo
	Sessions *session.Manager
	Log      *zap.Logger
}

type profileResp struct {
	User      model.User    `json:"user"`
	Profile   model.Profile `json:"profile"`
	RoleLabel string        `json:"role_label"`
}

func newProfileResp(u model.User) profileResp {
	return profileResp{User: u, Profile: u.ProfileOrDefault(), RoleLabel: u.Role.Label()}
}

func (h *ProfileHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, newProfileResp(*middleware.CurrentUser(c)))
}

type profileReq struct {
	Username *string `json:"username,omitempty"`
	model.ProfileUpdate
}

// Update applies a partial edit. Fields absent from the body keep their
// value. The session copy of the user is refreshed afterwards.
func (h *ProfileHandler) Update(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return invalid(c, msgInvalidBody, nil)
	}
	u := *middleware.CurrentUser(c)
	next := req.Apply(u.ProfileOrDefault())

	v := validation.Violations{}
	validation.RangeFloat("budget", next.Budget, 0, maxBudget, v)
	validation.OneOf("cleanliness", next.Cleanliness.Valid(), v)
	validation.OneOf("social_vibe", next.SocialVibe.Valid(), v)
	if req.Username != nil {
		validation.Required("username", *req.Username, v)
		u.Username = *req.Username
	}
	if !v.Empty() {
		return invalid(c, "Veuillez corriger les champs indiqués.", v)
	}
	u.Profile = &next

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Users.Update(ctx, u); err != nil {
		return storageFailure(c, h.Log, err, "/v1/profile", "Impossible d'enregistrer le profil.")
	}
	if err := h.Sessions.Refresh(ctx, middleware.SessionID(c), u); err != nil {
		h.Log.Warn("session refresh failed", zap.Error(err))
	}
	return c.JSON(http.StatusOK, newProfileResp(u))
}
