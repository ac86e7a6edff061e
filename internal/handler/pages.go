// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the static HTML pages of the phonebook UI.
package handler

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/phonebook-go/internal/middleware"
	"github.com/olegiv/phonebook-go/internal/store"
	"github.com/olegiv/phonebook-go/web"
)

// Pages serves the embedded HTML pages. The pages are plain files; all
// dynamic behavior happens through the JSON API.
type Pages struct {
	db             *sql.DB
	queries        *store.Queries
	sessionManager *scs.SessionManager
	static         fs.FS
}

// NewPages creates the page handler over the embedded web assets.
func NewPages(db *sql.DB, sm *scs.SessionManager) *Pages {
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(err)
	}
	return &Pages{
		db:             db,
		queries:        store.New(db),
		sessionManager: sm,
		static:         static,
	}
}

// Page returns a handler that serves a single named HTML file.
func (p *Pages) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.serveFile(w, r, name)
	}
}

// Root redirects / to the dashboard for signed-in users and to the login
// page for everyone else.
func (p *Pages) Root(w http.ResponseWriter, r *http.Request) {
	if p.sessionManager.Exists(r.Context(), middleware.SessionKeyUserID) {
		http.Redirect(w, r, middleware.RouteDashboard, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, middleware.RouteLogin, http.StatusSeeOther)
}

// Register serves the registration page only while no account exists.
// Once the first user is created the page redirects to login, mirroring the
// API's first-user-only registration rule.
func (p *Pages) Register(w http.ResponseWriter, r *http.Request) {
	count, err := p.queries.CountUsers(r.Context())
	if err != nil {
		slog.Error("counting users for register page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if count > 0 {
		http.Redirect(w, r, middleware.RouteLogin, http.StatusSeeOther)
		return
	}
	p.serveFile(w, r, "register.html")
}

// StaticAssets serves the non-HTML assets (css, js) under /static/.
func (p *Pages) StaticAssets() http.Handler {
	return http.StripPrefix("/static/", http.FileServerFS(p.static))
}

func (p *Pages) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	http.ServeFileFS(w, r, p.static, name)
}

// Health reports process and database health for load balancer probes.
func (p *Pages) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	dbState := "ok"
	if err := p.db.PingContext(r.Context()); err != nil {
		slog.Error("health check database ping", "error", err)
		status = http.StatusServiceUnavailable
		dbState = "unavailable"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if dbState == "ok" {
		_, _ = w.Write([]byte(`{"status":"ok","database":"ok"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"degraded","database":"unavailable"}`))
}
