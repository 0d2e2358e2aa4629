package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a user and sets its ID. A non-zero ID is kept as
// given. A taken username or id returns ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, u *User) error {
	query := `INSERT INTO users (username, password_hash, created_at) VALUES (:username, :password_hash, :created_at)`
	if u.ID != 0 {
		query = `INSERT INTO users (id, username, password_hash, created_at) VALUES (:id, :username, :password_hash, :created_at)`
	}
	res, err := sqlx.NamedExecContext(ctx, r.db, query, u)
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", u.Username, classify(err))
	}
	if u.ID != 0 {
		return nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// GetUserByID retrieves a user by id.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := sqlx.GetContext(ctx, r.db, &u, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %d: %w", id, ErrNotFound)
		}
		return nil, classify(err)
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := sqlx.GetContext(ctx, r.db, &u, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, classify(err)
	}
	return &u, nil
}
