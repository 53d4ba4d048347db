// Package router registers every HTTP route of the API on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/config"
	"github.com/iliyamo/colocetudiant/internal/handler"
	"github.com/iliyamo/colocetudiant/internal/middleware"
	"github.com/iliyamo/colocetudiant/internal/model"
)

// Handlers groups the handler sets wired by the server command.
type Handlers struct {
	Auth      *handler.AuthHandler
	Annonces  *handler.AnnonceHandler
	Profile   *handler.ProfileHandler
	Messages  *handler.MessageHandler
	Household *handler.HouseholdHandler
}

// Options carries the cross-cutting pieces shared by the route groups.
type Options struct {
	Auth      middleware.Auth
	Cache     *middleware.ResponseCache
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables rate limiting
	Log       *zap.Logger
}

// Register mounts public, authenticated and admin routes.
func Register(e *echo.Echo, h Handlers, o Options) {
	limit := middleware.RateLimit(o.RateLimit, o.Redis, o.Log)
	cached := o.Cache.Middleware()

	e.GET("/healthz", handler.Health)
	e.GET("/v1/home", h.Annonces.Home, cached)

	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register, limit)
	auth.POST("/login", h.Auth.Login, limit)
	auth.POST("/logout", h.Auth.Logout, o.Auth.Required())
	e.GET("/v1/me", h.Auth.Me, o.Auth.Optional())

	e.GET("/v1/annonces", h.Annonces.List, cached)
	e.GET("/v1/annonces/draft", h.Annonces.Draft)
	e.GET("/v1/annonces/:id", h.Annonces.Get, cached)

	v1 := e.Group("/v1", o.Auth.Required())
	v1.POST("/annonces", h.Annonces.Create)
	v1.POST("/annonces/description", h.Annonces.Describe, limit)
	v1.POST("/annonces/:id/match", h.Annonces.Match, limit)

	v1.GET("/profile", h.Profile.Get)
	v1.PUT("/profile", h.Profile.Update)

	v1.GET("/messages", h.Messages.List)
	v1.POST("/messages", h.Messages.Send)
	v1.GET("/messages/ws", h.Messages.Feed)

	v1.GET("/tasks", h.Household.ListTasks)
	v1.POST("/tasks", h.Household.CreateTask)
	v1.POST("/tasks/:id/toggle", h.Household.ToggleTask)
	v1.GET("/expenses", h.Household.ListExpenses)
	v1.POST("/expenses", h.Household.CreateExpense)

	v1.GET("/users", h.Auth.ListUsers, middleware.RequireRole(string(model.RoleAdmin)))
}
