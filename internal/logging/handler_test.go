// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/olegiv/phonebook-go/internal/store"
)

func testDB(t *testing.T) *store.Queries {
	t.Helper()

	f, err := os.CreateTemp("", "phonebook-log-test-*.db")
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

	queries := store.New(db)

	logger := slog.New(NewEventLogHandler(slog.NewTextHandler(io.Discard, nil), db))
	slogOld := slog.Default()
	slog.SetDefault(logger)
	t.Cleanup(func() { slog.SetDefault(slogOld) })

	return queries
}

func TestWarnAndErrorRecordsPersisted(t *testing.T) {
	queries := testDB(t)

	slog.Info("routine info, not persisted")
	slog.Warn("disk almost full", "free_mb", 12)
	slog.Error("backup failed", "error", "timeout")

	events, err := queries.ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2 (INFO must not be persisted)", len(events))
	}

	// Newest first: the error, then the warning.
	if events[0].Level != "error" || events[0].Message != "backup failed" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Level != "warning" || events[1].Message != "disk almost full" {
		t.Errorf("events[1] = %+v", events[1])
	}
	if events[1].Metadata == "" || events[1].Metadata == "{}" {
		t.Errorf("warning metadata empty: %q", events[1].Metadata)
	}
}
