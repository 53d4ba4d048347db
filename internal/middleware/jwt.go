package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/session"
	"github.com/iliyamo/colocetudiant/internal/utils"
)

// Auth validates bearer tokens and restores the session they point to.
type Auth struct {
	Secret   string
	Sessions *session.Manager
	Log      *zap.Logger
}

// Required rejects requests without a live session with 401.
func (a Auth) Required() echo.MiddlewareFunc { return a.middleware(true) }

// Optional restores the session when a valid token is present and lets
// anonymous requests through.
func (a Auth) Optional() echo.MiddlewareFunc { return a.middleware(false) }

func (a Auth) middleware(required bool) echo.MiddlewareFunc {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(CtxSession, session.Anonymous())
			raw := bearerToken(c)
			if raw == "" {
				if required {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
				}
				return next(c)
			}
			claims, err := utils.ParseAccessToken(a.Secret, raw)
			if err != nil {
				if required {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				return next(c)
			}

			st, err := a.Sessions.Restore(c.Request().Context(), claims.SessionID)
			if err != nil {
				log.Error("session restore failed", zap.Error(err))
				if !required {
					return next(c)
				}
				if errors.Is(err, repository.ErrStorageNotInitialized) {
					return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_not_initialized"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
			}
			if !st.IsAuthenticated || st.User.ID != claims.Subject {
				if required {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
				}
				return next(c)
			}

			c.Set(CtxSession, st)
			c.Set(CtxSID, claims.SessionID)
			c.Set(CtxUserID, st.User.ID)
			// role from the fresh record, not the token
			c.Set(CtxRole, string(st.User.Role))
			return next(c)
		}
	}
}

// bearerToken reads the Authorization header. Websocket clients cannot set
// headers, so the access_token query parameter is accepted as well.
func bearerToken(c echo.Context) string {
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.QueryParam("access_token")
}
