// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/phonebook-go/internal/middleware"
	"github.com/olegiv/phonebook-go/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "phonebook-pages-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func serve(t *testing.T, sm *scs.SessionManager, h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	sm.LoadAndSave(h).ServeHTTP(w, r)
	return w
}

func TestPageServesEmbeddedHTML(t *testing.T) {
	db := testDB(t)
	sm := scs.New()
	pages := NewPages(db, sm)

	w := serve(t, sm, pages.Page("login.html"), "/login.html")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<form id=\"login-form\"") {
		t.Error("login page markup missing")
	}
}

func TestRegisterPageRedirectsOnceUsersExist(t *testing.T) {
	db := testDB(t)
	sm := scs.New()
	pages := NewPages(db, sm)

	w := serve(t, sm, pages.Register, "/register.html")
	if w.Code != http.StatusOK {
		t.Errorf("fresh install: status = %d, want 200", w.Code)
	}

	_, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Username: "first", PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	w = serve(t, sm, pages.Register, "/register.html")
	if w.Code != http.StatusSeeOther {
		t.Errorf("with users: status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != middleware.RouteLogin {
		t.Errorf("Location = %q, want %q", got, middleware.RouteLogin)
	}
}

func TestRootRedirectsByAuthState(t *testing.T) {
	db := testDB(t)
	sm := scs.New()
	pages := NewPages(db, sm)

	w := serve(t, sm, pages.Root, "/")
	if got := w.Header().Get("Location"); got != middleware.RouteLogin {
		t.Errorf("anonymous root Location = %q, want login", got)
	}

	withSession := func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), middleware.SessionKeyUserID, int64(1))
		pages.Root(w, r)
	}
	w = serve(t, sm, withSession, "/")
	if got := w.Header().Get("Location"); got != middleware.RouteDashboard {
		t.Errorf("signed-in root Location = %q, want dashboard", got)
	}
}

func TestHealth(t *testing.T) {
	db := testDB(t)
	sm := scs.New()
	pages := NewPages(db, sm)

	w := serve(t, sm, pages.Health, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"database":"ok"`) {
		t.Errorf("body = %q", w.Body.String())
	}
}
