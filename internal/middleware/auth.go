// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request hardening.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/phonebook-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser carries the resolved *store.User of the current request.
const ContextKeyUser ContextKey = "user"

// Session keys.
const (
	SessionKeyUserID    = "user_id"
	SessionKeyFlash     = "flash"
	SessionKeyFlashType = "flash_type"
)

// Page routes used as redirect targets by the guard.
const (
	RouteLogin     = "/login.html"
	RouteDashboard = "/dashboard.html"
)

// Localized guard notices shown on page paths.
const (
	noticeLoginRequired = "برای دسترسی به این صفحه، ابتدا وارد شوید."
	noticeUserNotFound  = "کاربر یافت نشد. لطفاً دوباره وارد شوید."
	noticeAdminRequired = "شما اجازه دسترسی به این صفحه را ندارید."
)

// isAPIPath reports whether the request targets the JSON API, which gets
// structured errors instead of flash redirects.
func isAPIPath(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": message})
}

// Flash stores a one-shot notice in the session for the next page render.
func Flash(sm *scs.SessionManager, ctx context.Context, message, flashType string) {
	sm.Put(ctx, SessionKeyFlash, message)
	sm.Put(ctx, SessionKeyFlashType, flashType)
}

// denyAnonymous answers a request that lacks a usable identity.
func denyAnonymous(sm *scs.SessionManager, w http.ResponseWriter, r *http.Request, notice string) {
	if isAPIPath(r) {
		writeJSONError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	Flash(sm, r.Context(), notice, "error")
	http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
}

// Auth creates middleware that requires an authenticated session. API paths
// get a 401 JSON error; page paths get a flash notice and a login redirect.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sm.GetInt64(r.Context(), SessionKeyUserID) == 0 {
				denyAnonymous(sm, w, r, noticeLoginRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser creates middleware that resolves the session's user_id to a fresh
// store.User and places it in the request context. A session whose user was
// deleted concurrently is destroyed and the request treated as anonymous.
// Use after Auth.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					// Dangling session for a deleted user.
					_ = sm.Destroy(r.Context())
					denyAnonymous(sm, w, r, noticeUserNotFound)
					return
				}
				slog.Error("loading session user", "error", err, "user_id", userID)
				if isAPIPath(r) {
					writeJSONError(w, http.StatusInternalServerError, "Database error during user lookup")
					return
				}
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin creates middleware that requires an admin user. The admin
// flag is read from the store on every request rather than from the session:
// admin actions are low-frequency and a revoked flag must take effect
// immediately.
func RequireAdmin(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				denyAnonymous(sm, w, r, noticeLoginRequired)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					_ = sm.Destroy(r.Context())
					denyAnonymous(sm, w, r, noticeUserNotFound)
					return
				}
				slog.Error("admin check", "error", err, "user_id", userID)
				if isAPIPath(r) {
					writeJSONError(w, http.StatusInternalServerError, "Database error during admin check")
					return
				}
				http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
				return
			}

			if user.IsAdmin != 1 {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"username", user.Username,
					"remote_addr", r.RemoteAddr,
				)
				if isAPIPath(r) {
					writeJSONError(w, http.StatusForbidden, "Admin access required")
					return
				}
				Flash(sm, r.Context(), noticeAdminRequired, "error")
				http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}
