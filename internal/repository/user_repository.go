package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/colocetudiant/internal/model"
	"github.com/iliyamo/colocetudiant/internal/utils"
)

// Account pairs a user with the credential material needed at sign-in.
type Account struct {
	User         model.User
	PasswordHash string
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,role,profile,created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner, extra ...any) (model.User, error) {
	var (
		u       model.User
		role    string
		profile sql.NullString
	)
	dest := append([]any{&u.ID, &u.Email, &u.Username, &role, &profile, &u.CreatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if profile.Valid && profile.String != "" && profile.String != "null" {
		var p model.Profile
		if err := json.Unmarshal([]byte(profile.String), &p); err != nil {
			return model.User{}, err
		}
		u.Profile = &p
	}
	return u, nil
}

func encodeProfile(p *model.Profile) (any, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// List returns every user.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at ASC")
	if err != nil {
		return nil, storageError("list users", err)
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storageError("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list users", err)
	}
	return out, nil
}

// GetByID fetches a user by id. A missing row is not an error: it yields
// (nil, nil).
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("get user", err)
	}
	return &u, nil
}

// GetByEmail fetches the account bound to a normalized email, or (nil, nil).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var hash string
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+",password_hash FROM users WHERE email=? LIMIT 1", email)
	u, err := scanUser(row, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("get user by email", err)
	}
	return &Account{User: u, PasswordHash: hash}, nil
}

// Create hashes the password, assigns a fresh UUID and inserts the user.
// The stored record is returned.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if !u.Role.Valid() {
		u.Role = model.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	profile, err := encodeProfile(u.Profile)
	if err != nil {
		return model.User{}, err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id,email,username,role,profile,password_hash,created_at) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.Email, u.Username, string(u.Role), profile, hash, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, storageError("create user", err)
	}
	return u, nil
}

// Update overwrites the mutable columns of a user (username and profile).
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	profile, err := encodeProfile(u.Profile)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET username=?, profile=? WHERE id=?", u.Username, profile, u.ID)
	return storageError("update user", err)
}
