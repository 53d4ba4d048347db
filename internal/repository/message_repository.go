package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/colocetudiant/internal/model"
)

// MessageRepo provides access to the append-only messages table.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// List returns the whole conversation, oldest first.
func (r *MessageRepo) List(ctx context.Context) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id,sender,content,timestamp,`read` FROM messages ORDER BY timestamp ASC, id ASC")
	if err != nil {
		return nil, storageError("list messages", err)
	}
	defer rows.Close()
	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Content, &m.Timestamp, &m.Read); err != nil {
			return nil, storageError("scan message", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list messages", err)
	}
	return out, nil
}

// Create appends a message stamped with the current time and read=false.
func (r *MessageRepo) Create(ctx context.Context, sender, content string) (model.Message, error) {
	m := model.Message{Sender: sender, Content: content, Timestamp: time.Now().UTC()}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (sender,content,timestamp,`read`) VALUES (?,?,?,?)",
		m.Sender, m.Content, m.Timestamp, false)
	if err != nil {
		return model.Message{}, storageError("create message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Message{}, err
	}
	m.ID = id
	return m, nil
}
