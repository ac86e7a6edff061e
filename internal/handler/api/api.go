// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers for the phonebook.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/phonebook-go/internal/middleware"
	"github.com/olegiv/phonebook-go/internal/store"
)

// maxImportBytes caps the multipart memory used for spreadsheet uploads.
const maxImportBytes = 10 << 20 // 10 MB

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db              *sql.DB
	queries         *store.Queries
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
	validate        *validator.Validate
	sanitizer       *bluemonday.Policy
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, sm *scs.SessionManager, lp *middleware.LoginProtection) *Handler {
	return &Handler{
		db:              db,
		queries:         store.New(db),
		sessionManager:  sm,
		loginProtection: lp,
		validate:        validator.New(),
		sanitizer:       bluemonday.StrictPolicy(),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a flat JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"error": message})
}

// writeMessage writes a flat JSON success response.
func writeMessage(w http.ResponseWriter, statusCode int, data map[string]any) {
	writeJSON(w, statusCode, data)
}

// decodeJSON decodes the request body into dst. On failure a 400 response
// has already been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// parseIDParam parses the {id} chi URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// notFoundOr maps sql.ErrNoRows to a 404 with the given message and
// everything else to a sanitized 500, logging the underlying error with the
// id it concerns.
func notFoundOr(w http.ResponseWriter, err error, id int64, notFoundMsg, internalMsg string) {
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	slog.Error(internalMsg, "error", err, "id", id)
	writeError(w, http.StatusInternalServerError, internalMsg)
}
