// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestCreateUserAndLookup(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{
		Username:     "admin",
		PasswordHash: "hash",
		IsAdmin:      1,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID < 1 || user.Username != "admin" {
		t.Errorf("CreateUser = %+v", user)
	}
	if user.Role() != RoleAdmin {
		t.Errorf("Role() = %q, want %q", user.Role(), RoleAdmin)
	}

	byName, err := q.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("GetUserByUsername ID = %d, want %d", byName.ID, user.ID)
	}

	byID, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if byID.Username != "admin" || byID.PasswordHash != "hash" {
		t.Errorf("GetUserByID = %+v", byID)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	if _, err := q.CreateUser(ctx, CreateUserParams{Username: "bob", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := q.CreateUser(ctx, CreateUserParams{Username: "bob", PasswordHash: "h2"})
	if err == nil {
		t.Fatal("expected duplicate username error")
	}
	if !IsUniqueConstraint(err) {
		t.Errorf("expected unique constraint error, got %v", err)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{Username: "carol", PasswordHash: "h", IsAdmin: 0})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// Only the role changes; username and hash stay put.
	isAdmin := int64(1)
	if err := q.UpdateUser(ctx, user.ID, UpdateUserParams{IsAdmin: &isAdmin}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Username != "carol" || got.PasswordHash != "h" {
		t.Errorf("unrelated fields changed: %+v", got)
	}
	if got.IsAdmin != 1 {
		t.Errorf("IsAdmin = %d, want 1", got.IsAdmin)
	}

	newName := "caroline"
	if err := q.UpdateUser(ctx, user.ID, UpdateUserParams{Username: &newName}); err != nil {
		t.Fatalf("UpdateUser username: %v", err)
	}
	got, err = q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Username != "caroline" || got.IsAdmin != 1 {
		t.Errorf("after rename: %+v", got)
	}
}

func TestUpdateUserEmptyParams(t *testing.T) {
	var p UpdateUserParams
	if !p.IsEmpty() {
		t.Error("zero UpdateUserParams should be empty")
	}

	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{Username: "dave", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// A no-op update succeeds and leaves the row alone.
	if err := q.UpdateUser(ctx, user.ID, p); err != nil {
		t.Errorf("UpdateUser with no fields: %v", err)
	}
	got, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.Username != "dave" || got.PasswordHash != "h" {
		t.Errorf("row changed by empty update: %+v", got)
	}
}

func TestDeleteUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{Username: "gone", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := q.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := q.DeleteUser(ctx, user.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second DeleteUser = %v, want sql.ErrNoRows", err)
	}
}

func TestCountUsersAndUsernameExists(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	count, err := q.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 0 {
		t.Errorf("CountUsers on fresh db = %d, want 0", count)
	}

	u1, err := q.CreateUser(ctx, CreateUserParams{Username: "first", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := q.CreateUser(ctx, CreateUserParams{Username: "second", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	count, err = q.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 2 {
		t.Errorf("CountUsers = %d, want 2", count)
	}

	taken, err := q.UsernameExists(ctx, "second", u1.ID)
	if err != nil {
		t.Fatalf("UsernameExists: %v", err)
	}
	if !taken {
		t.Error("existing username not reported as taken")
	}

	taken, err = q.UsernameExists(ctx, "first", u1.ID)
	if err != nil {
		t.Fatalf("UsernameExists: %v", err)
	}
	if taken {
		t.Error("own username reported as taken")
	}
}

func TestUpdateUserPassword(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	user, err := q.CreateUser(ctx, CreateUserParams{Username: "eve", PasswordHash: "old"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := q.UpdateUserPassword(ctx, user.ID, "new"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	got, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got.PasswordHash != "new" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "new")
	}

	if err := q.UpdateUserPassword(ctx, 9999, "x"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("UpdateUserPassword missing user = %v, want sql.ErrNoRows", err)
	}
}
