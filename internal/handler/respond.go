// Package handler exposes the HTTP handlers of the API. Handlers return
// view-ready JSON; user facing messages are in French.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/validation"
)

const (
	msgStorageBanner   = "La base de données n'est pas encore initialisée. Veuillez vérifier vos tables."
	msgGenericError    = "Une erreur est survenue. Veuillez réessayer."
	msgInvalidBody     = "Requête invalide."
	dbTimeout          = 5 * time.Second
	errStorageNotReady = "storage_not_initialized"
)

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// storageBanner is the answer to any read that hit a missing table. retry
// is the resource the client should call again once the schema exists.
func storageBanner(c echo.Context, retry string) error {
	return c.JSON(http.StatusServiceUnavailable, echo.Map{
		"error":   errStorageNotReady,
		"message": msgStorageBanner,
		"retry":   retry,
	})
}

// storageFailure maps a repository error onto the banner or a 500 carrying
// msg.
func storageFailure(c echo.Context, log *zap.Logger, err error, retry, msg string) error {
	if errors.Is(err, repository.ErrStorageNotInitialized) {
		log.Warn("storage not initialized", zap.String("route", c.Path()))
		return storageBanner(c, retry)
	}
	log.Error("storage call failed", zap.String("route", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

func invalid(c echo.Context, msg string, v validation.Violations) error {
	body := echo.Map{"error": msg}
	if !v.Empty() {
		body["fields"] = v
	}
	return c.JSON(http.StatusBadRequest, body)
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func isStorageMissing(err error) bool {
	return errors.Is(err, repository.ErrStorageNotInitialized)
}
