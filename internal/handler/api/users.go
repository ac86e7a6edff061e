// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/phonebook-go/internal/auth"
	"github.com/olegiv/phonebook-go/internal/middleware"
	"github.com/olegiv/phonebook-go/internal/store"
)

// UserResponse is the JSON shape of a user in API responses. The password
// hash never leaves the store layer.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func userResponse(u store.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role()}
}

// ListUsers handles GET /api/users. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		slog.Error("listing users", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateUserRequest is the POST /api/users payload.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

// CreateUser handles POST /api/users. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := h.validate.Struct(req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	isAdmin := int64(0)
	if req.Role == store.RoleAdmin {
		isAdmin = 1
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Username:     req.Username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		if store.IsUniqueConstraint(err) {
			writeError(w, http.StatusConflict, "Username already exists")
			return
		}
		slog.Error("creating user", "error", err, "username", req.Username)
		writeError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	slog.Info("user created",
		"user_id", user.ID, "username", user.Username, "role", user.Role(),
		"created_by", middleware.GetUserID(r))
	writeMessage(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"id":      user.ID,
	})
}

// GetUser handles GET /api/users/{id}. Admin only.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		notFoundOr(w, err, id, "User not found", "Error fetching user")
		return
	}
	writeJSON(w, http.StatusOK, userResponse(user))
}

// UpdateUserRequest is the PUT /api/users/{id} payload. Unlike contacts,
// user updates are partial: only fields present (and non-empty) change.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UpdateUser handles PUT /api/users/{id}. Admin only.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.queries.GetUserByID(r.Context(), id); err != nil {
		notFoundOr(w, err, id, "User not found", "Error updating user")
		return
	}

	var p store.UpdateUserParams

	if username := trimmed(req.Username); username != nil {
		taken, err := h.queries.UsernameExists(r.Context(), *username, id)
		if err != nil {
			slog.Error("checking username", "error", err)
			writeError(w, http.StatusInternalServerError, "Error updating user")
			return
		}
		if taken {
			writeError(w, http.StatusConflict, "Username already exists")
			return
		}
		p.Username = username
	}

	if password := trimmed(req.Password); password != nil {
		hash, err := auth.HashPassword(*password)
		if err != nil {
			slog.Error("hashing password", "error", err)
			writeError(w, http.StatusInternalServerError, "Error updating user")
			return
		}
		p.PasswordHash = &hash
	}

	if role := trimmed(req.Role); role != nil {
		isAdmin := int64(0)
		if *role == store.RoleAdmin {
			isAdmin = 1
		}
		p.IsAdmin = &isAdmin
	}

	if p.IsEmpty() {
		writeError(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	if err := h.queries.UpdateUser(r.Context(), id, p); err != nil {
		if store.IsUniqueConstraint(err) {
			writeError(w, http.StatusConflict, "Username already exists")
			return
		}
		notFoundOr(w, err, id, "User not found", "Error updating user")
		return
	}

	slog.Info("user updated", "user_id", id, "updated_by", middleware.GetUserID(r))
	writeMessage(w, http.StatusOK, map[string]any{"message": "User updated successfully"})
}

// DeleteUser handles DELETE /api/users/{id}. Admin only.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := h.queries.DeleteUser(r.Context(), id); err != nil {
		notFoundOr(w, err, id, "User not found", "Error deleting user")
		return
	}
	slog.Info("user deleted", "user_id", id, "deleted_by", middleware.GetUserID(r))
	writeMessage(w, http.StatusOK, map[string]any{"message": "User deleted successfully"})
}

// ChangePasswordRequest is the POST /api/users/{id}/change_password payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/users/{id}/change_password. A user may
// change their own password; an admin may set anyone's. When a current
// password accompanies a self-change it must match the stored one.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	current := middleware.GetUser(r)
	if current == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if current.ID != id && current.IsAdmin != 1 {
		slog.Warn("password change denied",
			"target_user_id", id, "user_id", current.ID)
		writeError(w, http.StatusForbidden, "Permission denied")
		return
	}

	target, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		notFoundOr(w, err, id, "User not found", "Error changing password")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "New password is required")
		return
	}

	// A supplied current password on a self-change is verified; an omitted
	// one is not required.
	if current.ID == id && req.CurrentPassword != "" {
		match, err := auth.CheckPassword(req.CurrentPassword, target.PasswordHash)
		if err != nil || !match {
			writeError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("hashing password", "error", err)
		writeError(w, http.StatusInternalServerError, "Error changing password")
		return
	}
	if err := h.queries.UpdateUserPassword(r.Context(), id, hash); err != nil {
		notFoundOr(w, err, id, "User not found", "Error changing password")
		return
	}

	slog.Info("password changed", "user_id", id, "changed_by", current.ID)
	writeMessage(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
}

// trimmed returns a pointer to the trimmed string, or nil when the field was
// absent or blank. Blank submissions are treated as "leave unchanged".
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
