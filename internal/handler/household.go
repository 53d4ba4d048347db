package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/middleware"
	"github.com/iliyamo/colocetudiant/internal/model"
	"github.com/iliyamo/colocetudiant/internal/repository"
	"github.com/iliyamo/colocetudiant/internal/validation"
)

// HouseholdHandler serves the shared chores and expenses dashboard.
type HouseholdHandler struct {
	Tasks    *repository.TaskRepo
	Expenses *repository.ExpenseRepo
	Log      *zap.Logger
}

func (h *HouseholdHandler) ListTasks(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	tasks, err := h.Tasks.List(ctx)
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/tasks", msgGenericError)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tasks})
}

type taskReq struct {
	Title string `json:"title"`
}

// CreateTask adds a chore assigned to the session user, due now.
func (h *HouseholdHandler) CreateTask(c echo.Context) error {
	var req taskReq
	if err := c.Bind(&req); err != nil {
		return invalid(c, msgInvalidBody, nil)
	}
	v := validation.Violations{}
	validation.Required("title", req.Title, v)
	if !v.Empty() {
		return invalid(c, "Le titre de la tâche est requis.", v)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	t, err := h.Tasks.Create(ctx, model.Task{
		Title:      strings.TrimSpace(req.Title),
		AssignedTo: middleware.CurrentUser(c).Username,
		DueDate:    time.Now().UTC(),
	})
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/tasks", msgGenericError)
	}
	return c.JSON(http.StatusCreated, t)
}

// ToggleTask flips the done flag of any task.
func (h *HouseholdHandler) ToggleTask(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Tâche introuvable."})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	err := h.Tasks.ToggleDone(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Tâche introuvable."})
	}
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/tasks", msgGenericError)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListExpenses returns the expenses and their running total.
func (h *HouseholdHandler) ListExpenses(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	expenses, err := h.Expenses.List(ctx)
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/expenses", msgGenericError)
	}
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return c.JSON(http.StatusOK, echo.Map{"items": expenses, "total": total})
}

type expenseReq struct {
	Title  string  `json:"title"`
	Amount float64 `json:"amount"`
}

// CreateExpense records a cost paid by the session user.
func (h *HouseholdHandler) CreateExpense(c echo.Context) error {
	var req expenseReq
	if err := c.Bind(&req); err != nil {
		return invalid(c, msgInvalidBody, nil)
	}
	v := validation.Violations{}
	validation.Required("title", req.Title, v)
	validation.PositiveFloat("amount", req.Amount, v)
	if !v.Empty() {
		return invalid(c, "Titre et montant positif requis.", v)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	e, err := h.Expenses.Create(ctx, model.Expense{
		Title:  strings.TrimSpace(req.Title),
		Amount: req.Amount,
		PaidBy: middleware.CurrentUser(c).Username,
		Date:   time.Now().UTC(),
	})
	if err != nil {
		return storageFailure(c, h.Log, err, "/v1/expenses", msgGenericError)
	}
	return c.JSON(http.StatusCreated, e)
}
