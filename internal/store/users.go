package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/lostfound/internal/model"
)

// ErrDuplicate is returned when an insert collides with a unique username
// or email.
var ErrDuplicate = errors.New("duplicate value")

const userColumns = `id, username, email, password_hash, is_verified, role,
	reset_password_token, reset_password_expires, created_at, updated_at`

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// CreateUser creates a new, unverified user.
func CreateUser(ctx context.Context, db *sqlx.DB, username, email, passwordHash, role string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, role,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// getUser runs a single-row user query, mapping no rows to nil.
func getUser(ctx context.Context, db *sqlx.DB, what, where string, args ...any) (*model.User, error) {
	u := &model.User{}
	err := db.GetContext(ctx, u, `SELECT `+userColumns+` FROM users WHERE `+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by %s: %w", what, err)
	}
	return u, nil
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sqlx.DB, id int64) (*model.User, error) {
	return getUser(ctx, db, "id", `id = ?`, id)
}

// GetUserByUsername returns a user by username.
func GetUserByUsername(ctx context.Context, db *sqlx.DB, username string) (*model.User, error) {
	return getUser(ctx, db, "username", `username = ?`, username)
}

// GetUserByEmail returns a user by email address.
func GetUserByEmail(ctx context.Context, db *sqlx.DB, email string) (*model.User, error) {
	return getUser(ctx, db, "email", `email = ?`, email)
}

// FindUserByUsernameOrEmail returns any user holding either the username or
// the email.
func FindUserByUsernameOrEmail(ctx context.Context, db *sqlx.DB, username, email string) (*model.User, error) {
	return getUser(ctx, db, "username or email", `username = ? OR email = ? LIMIT 1`, username, email)
}

// GetUserByResetToken returns the user holding the given password reset
// token. Expiry is not checked here.
func GetUserByResetToken(ctx context.Context, db *sqlx.DB, token string) (*model.User, error) {
	return getUser(ctx, db, "reset token", `reset_password_token = ?`, token)
}

// ListUsers returns all users.
func ListUsers(ctx context.Context, db *sqlx.DB) ([]model.User, error) {
	var users []model.User
	err := db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// MarkUserVerified sets the user's email as verified.
func MarkUserVerified(ctx context.Context, db *sqlx.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET is_verified = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("verifying user: %w", err)
	}
	return nil
}

// SetResetToken stores a password reset token and its expiry.
func SetResetToken(ctx context.Context, db *sqlx.DB, id int64, token string, expires time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET reset_password_token = ?, reset_password_expires = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		token, expires.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting reset token: %w", err)
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash and clears any pending
// reset token.
func UpdateUserPassword(ctx context.Context, db *sqlx.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_password_token = NULL, reset_password_expires = NULL,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// DeleteUser removes a user. It reports false if no such user existed.
func DeleteUser(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	return n > 0, nil
}
