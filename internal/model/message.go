package model

import "time"

// Message is one chat line. Rows are append-only.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Task is a shared household chore.
type Task struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	AssignedTo string    `json:"assigned_to"`
	IsDone     bool      `json:"is_done"`
	DueDate    time.Time `json:"due_date"`
}

// Expense is a shared cost paid by one roommate.
type Expense struct {
	ID     int64     `json:"id"`
	Title  string    `json:"title"`
	Amount float64   `json:"amount"`
	PaidBy string    `json:"paid_by"`
	Date   time.Time `json:"date"`
}
