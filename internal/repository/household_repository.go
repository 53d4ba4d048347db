package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/colocetudiant/internal/model"
)

// TaskRepo stores the shared chores of the dashboard.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id,title,assigned_to,is_done,due_date FROM tasks ORDER BY id ASC")
	if err != nil {
		return nil, storageError("list tasks", err)
	}
	defer rows.Close()
	out := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.AssignedTo, &t.IsDone, &t.DueDate); err != nil {
			return nil, storageError("scan task", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list tasks", err)
	}
	return out, nil
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (title,assigned_to,is_done,due_date) VALUES (?,?,?,?)",
		t.Title, t.AssignedTo, t.IsDone, t.DueDate)
	if err != nil {
		return model.Task{}, storageError("create task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, err
	}
	t.ID = id
	return t, nil
}

// ToggleDone flips the done flag of a task. Anyone may toggle any task;
// concurrent toggles resolve at the database, last write wins.
func (r *TaskRepo) ToggleDone(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tasks SET is_done = NOT is_done WHERE id = ?", id)
	if err != nil {
		return storageError("toggle task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpenseRepo stores the shared costs of the dashboard.
type ExpenseRepo struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

func (r *ExpenseRepo) List(ctx context.Context) ([]model.Expense, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id,title,amount,paid_by,date FROM expenses ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, storageError("list expenses", err)
	}
	defer rows.Close()
	out := []model.Expense{}
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.PaidBy, &e.Date); err != nil {
			return nil, storageError("scan expense", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list expenses", err)
	}
	return out, nil
}

func (r *ExpenseRepo) Create(ctx context.Context, e model.Expense) (model.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (title,amount,paid_by,date) VALUES (?,?,?,?)",
		e.Title, e.Amount, e.PaidBy, e.Date)
	if err != nil {
		return model.Expense{}, storageError("create expense", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Expense{}, err
	}
	e.ID = id
	return e, nil
}
