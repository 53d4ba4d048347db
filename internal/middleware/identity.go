package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/colocetudiant/internal/model"
	"github.com/iliyamo/colocetudiant/internal/session"
)

// Context keys set by the session middleware.
const (
	CtxUserID  = "user_id"
	CtxRole    = "role"
	CtxSID     = "sid"
	CtxSession = "session"
)

// State returns the session state of the request, anonymous when no
// session middleware ran or no session was found.
func State(c echo.Context) session.State {
	if st, ok := c.Get(CtxSession).(session.State); ok {
		return st
	}
	return session.Anonymous()
}

// CurrentUser returns the signed-in user or nil.
func CurrentUser(c echo.Context) *model.User {
	st := State(c)
	if !st.IsAuthenticated {
		return nil
	}
	return st.User
}

// SessionID returns the slot id bound to the request token.
func SessionID(c echo.Context) string {
	s, _ := c.Get(CtxSID).(string)
	return s
}

// currentUserID is the rate-limit identity: the user id or "anon".
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
