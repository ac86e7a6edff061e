// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command phonebook runs the internal phonebook web application.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/phonebook-go/internal/config"
	"github.com/olegiv/phonebook-go/internal/handler"
	"github.com/olegiv/phonebook-go/internal/handler/api"
	"github.com/olegiv/phonebook-go/internal/logging"
	"github.com/olegiv/phonebook-go/internal/middleware"
	"github.com/olegiv/phonebook-go/internal/session"
	"github.com/olegiv/phonebook-go/internal/store"
)

const appVersion = "1.0.0"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("phonebook %s\n", appVersion)
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("loading .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	baseHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(baseHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	// Once the database is up, upgrade the logger so WARN+ records also
	// land in the events table.
	slog.SetDefault(slog.New(logging.NewEventLogHandler(baseHandler, db)))

	sessionManager := session.New(db, cfg.IsDevelopment())
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	apiHandler := api.NewHandler(db, sessionManager, loginProtection)
	pages := handler.NewPages(db, sessionManager)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders)
	r.Use(sessionManager.LoadAndSave)

	r.Get("/health", pages.Health)

	// JSON API. Cross-site requests are rejected by SameSite session
	// cookies plus the origin checks on the page routes; the API itself
	// stays header-token free for the fetch() front-end.
	r.Route("/api", func(r chi.Router) {
		r.With(loginProtection.Middleware()).Post("/login", apiHandler.Login)
		r.Post("/register", apiHandler.Register)
		r.Get("/users/count", apiHandler.UsersCount)

		// Everything below requires a signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionManager))
			r.Use(middleware.LoadUser(sessionManager, db))

			r.Get("/logout", apiHandler.Logout)

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", apiHandler.ListContacts)
				r.Post("/", apiHandler.CreateContact)
				r.Get("/search", apiHandler.SearchContacts)
				r.Post("/import", apiHandler.ImportContacts)
				r.Get("/{id}", apiHandler.GetContact)
				r.Put("/{id}", apiHandler.UpdateContact)
				r.Delete("/{id}", apiHandler.DeleteContact)
			})

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", apiHandler.ListCompanies)
				r.Post("/", apiHandler.CreateCompany)
				r.Get("/unique_from_contacts", apiHandler.UniqueCompaniesFromContacts)
				r.Get("/unique-from-contacts", apiHandler.UniqueCompaniesFromContacts)
				r.Get("/{id}", apiHandler.GetCompany)
				r.Put("/{id}", apiHandler.UpdateCompany)
				r.Delete("/{id}", apiHandler.DeleteCompany)
			})

			// Password changes are self-or-admin; the guard inside the
			// handler decides. The rest of user management is admin only.
			r.Post("/users/{id}/change_password", apiHandler.ChangePassword)

			r.With(middleware.RequireAdmin(sessionManager, db)).
				Get("/events", apiHandler.ListEvents)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(sessionManager, db))
				r.Get("/", apiHandler.ListUsers)
				r.Post("/", apiHandler.CreateUser)
				r.Get("/{id}", apiHandler.GetUser)
				r.Put("/{id}", apiHandler.UpdateUser)
				r.Delete("/{id}", apiHandler.DeleteUser)
			})
		})
	})

	// HTML pages with CSRF protection on form-capable routes.
	r.Group(func(r chi.Router) {
		csrfCfg := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
		r.Use(middleware.CSRF(csrfCfg))

		r.Get("/", pages.Root)
		r.Get("/login.html", pages.Page("login.html"))
		r.Get("/register.html", pages.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionManager))
			r.Use(middleware.LoadUser(sessionManager, db))
			r.Get("/dashboard.html", pages.Page("dashboard.html"))
			r.Get("/contacts.html", pages.Page("contacts.html"))
			r.Get("/contacts_entry.html", pages.Page("contacts_entry.html"))
			r.Get("/companies.html", pages.Page("companies.html"))
			r.With(middleware.RequireAdmin(sessionManager, db)).
				Get("/users_mng.html", pages.Page("users_mng.html"))
		})
	})

	r.Handle("/static/*", pages.StaticAssets())

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Env, "version", appVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
