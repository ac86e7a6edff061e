// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
)

// CreateUserParams holds the writable user columns.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	IsAdmin      int64
}

// CreateUser inserts a new user and returns the stored row. A duplicate
// username surfaces as a unique-constraint error; see IsUniqueConstraint.
func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, ?)
		 RETURNING id, username, password_hash, is_admin`,
		p.Username, p.PasswordHash, p.IsAdmin).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	return u, err
}

// GetUserByID returns a user by id, or sql.ErrNoRows.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, is_admin FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	return u, err
}

// GetUserByUsername returns a user by username, or sql.ErrNoRows.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, is_admin FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	return u, err
}

// ListUsers returns all users in store order.
func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, username, password_hash, is_admin FROM users")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserParams describes a partial user update: only non-nil fields are
// written. Column names are fixed here, never taken from the request, so the
// mutation set is built without string-concatenating caller input.
type UpdateUserParams struct {
	Username     *string
	PasswordHash *string
	IsAdmin      *int64
}

// IsEmpty reports whether the update carries no fields at all.
func (p UpdateUserParams) IsEmpty() bool {
	return p.Username == nil && p.PasswordHash == nil && p.IsAdmin == nil
}

// UpdateUser applies a partial update to an existing user. Returns
// sql.ErrNoRows when the id does not exist.
func (q *Queries) UpdateUser(ctx context.Context, id int64, p UpdateUserParams) error {
	var sets []string
	var args []any
	if p.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *p.Username)
	}
	if p.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *p.PasswordHash)
	}
	if p.IsAdmin != nil {
		sets = append(sets, "is_admin = ?")
		args = append(args, *p.IsAdmin)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteUser removes a user by id. Returns sql.ErrNoRows when the id does
// not exist. Live sessions referencing the deleted user are not touched;
// the access-control guard invalidates them on their next request.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// UsernameExists reports whether another user (excluding excludeID) already
// holds the given username. Pass excludeID 0 on create.
func (q *Queries) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE username = ? AND id != ?", username, excludeID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
