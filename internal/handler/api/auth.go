// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/phonebook-go/internal/auth"
	"github.com/olegiv/phonebook-go/internal/middleware"
	"github.com/olegiv/phonebook-go/internal/store"
)

// RegisterRequest is the POST /api/register payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

// Register handles POST /api/register.
//
// Registration is open only while the user table is empty: the first account
// bootstraps the system (and may claim the admin role), after which new
// accounts come from an administrator via POST /api/users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	count, err := h.queries.CountUsers(r.Context())
	if err != nil {
		slog.Error("counting users during registration", "error", err)
		writeError(w, http.StatusInternalServerError, "Error during registration")
		return
	}
	if count > 0 {
		slog.Warn("registration attempt with existing users", "username", req.Username, "remote_addr", r.RemoteAddr)
		writeError(w, http.StatusForbidden, "Registration is only allowed for the first user")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password during registration", "error", err)
		writeError(w, http.StatusInternalServerError, "Error during registration")
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
		slog.Error("creating user during registration", "error", err, "username", req.Username)
		writeError(w, http.StatusInternalServerError, "Error during registration")
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username, "role", user.Role())
	writeMessage(w, http.StatusCreated, map[string]any{"message": "Registration successful"})
}

// LoginRequest is the POST /api/login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, _ := h.loginProtection.IsAccountLocked(req.Username); locked {
			slog.Warn("login attempt on locked account", "username", req.Username, "remote_addr", r.RemoteAddr)
			writeError(w, http.StatusTooManyRequests, "Account temporarily locked, try again later")
			return
		}
	}

	user, err := h.queries.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("looking up user during login", "error", err, "username", req.Username)
			writeError(w, http.StatusInternalServerError, "Error during login")
			return
		}
		h.failLogin(w, req.Username, r.RemoteAddr)
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.failLogin(w, req.Username, r.RemoteAddr)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Username)
	}

	// Re-hash transparently when the stored hash predates the current
	// argon2 parameters.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash); err != nil {
				slog.Warn("rehashing password on login", "error", err, "user_id", user.ID)
			}
		}
	}

	// New session token on privilege change.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("renewing session token", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Error during login")
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	writeMessage(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"role":    user.Role(),
	})
}

func (h *Handler) failLogin(w http.ResponseWriter, username, remoteAddr string) {
	if h.loginProtection != nil {
		if locked, duration := h.loginProtection.RecordFailedAttempt(username); locked {
			slog.Warn("account locked after repeated failures",
				"username", username, "lock_duration", duration, "remote_addr", remoteAddr)
		}
	}
	slog.Warn("login failed", "username", username, "remote_addr", remoteAddr)
	writeError(w, http.StatusUnauthorized, "Invalid credentials")
}

// Logout handles GET /api/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("destroying session", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Error during logout")
		return
	}
	slog.Info("user logged out", "user_id", userID)
	writeMessage(w, http.StatusOK, map[string]any{"message": "Logout successful"})
}

// UsersCount handles GET /api/users/count. Public: the login page uses it to
// decide whether to offer first-time registration.
func (h *Handler) UsersCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.queries.CountUsers(r.Context())
	if err != nil {
		slog.Error("counting users", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching users count")
		return
	}
	writeMessage(w, http.StatusOK, map[string]any{"count": count})
}
