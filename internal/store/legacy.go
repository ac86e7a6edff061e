// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// contactColumns is the canonical contacts column set, in table order.
var contactColumns = []string{
	"id",
	"full_name",
	"main_company",
	"job_title",
	"mobile_phone",
	"office_phone1",
	"extension1",
	"office_phone2",
	"extension2",
	"office_phone3",
	"extension3",
	"email",
	"office_manager_name1",
	"office_manager_mobile1",
	"office_manager_name2",
	"office_manager_mobile2",
	"office_manager_name3",
	"office_manager_mobile3",
	"office_email",
	"subject_category",
	"country",
	"address",
	"postal_code",
	"description",
}

// legacyContactColumns marks column names that identify a pre-rebuild schema.
var legacyContactColumns = []string{"affiliated_company1", "affiliated_company2"}

// migrateLegacyContacts rebuilds the contacts table when it still carries
// legacy columns. Rows are preserved by copying the intersection of the old
// and canonical column sets; NULLs in old optional columns collapse to empty
// strings. The rebuild is idempotent: a table already in the canonical shape
// is left untouched.
func migrateLegacyContacts(db *sql.DB) error {
	existing, err := tableColumns(db, "contacts")
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	legacy := false
	for _, col := range legacyContactColumns {
		if _, ok := existing[col]; ok {
			legacy = true
			break
		}
	}
	if !legacy {
		return nil
	}

	slog.Info("rebuilding contacts table to drop legacy columns")

	var keep []string
	for _, col := range contactColumns {
		if _, ok := existing[col]; ok {
			keep = append(keep, col)
		}
	}

	selectCols := make([]string, len(keep))
	for i, col := range keep {
		if col == "id" {
			selectCols[i] = col
			continue
		}
		selectCols[i] = fmt.Sprintf("COALESCE(%s, '')", col)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning rebuild transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`CREATE TABLE contacts_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			full_name TEXT NOT NULL CHECK (full_name <> ''),
			main_company TEXT NOT NULL DEFAULT '',
			job_title TEXT NOT NULL DEFAULT '',
			mobile_phone TEXT NOT NULL CHECK (mobile_phone <> ''),
			office_phone1 TEXT NOT NULL DEFAULT '',
			extension1 TEXT NOT NULL DEFAULT '',
			office_phone2 TEXT NOT NULL DEFAULT '',
			extension2 TEXT NOT NULL DEFAULT '',
			office_phone3 TEXT NOT NULL DEFAULT '',
			extension3 TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			office_manager_name1 TEXT NOT NULL DEFAULT '',
			office_manager_mobile1 TEXT NOT NULL DEFAULT '',
			office_manager_name2 TEXT NOT NULL DEFAULT '',
			office_manager_mobile2 TEXT NOT NULL DEFAULT '',
			office_manager_name3 TEXT NOT NULL DEFAULT '',
			office_manager_mobile3 TEXT NOT NULL DEFAULT '',
			office_email TEXT NOT NULL DEFAULT '',
			subject_category TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT ''
		)`,
		fmt.Sprintf("INSERT INTO contacts_new (%s) SELECT %s FROM contacts",
			strings.Join(keep, ", "), strings.Join(selectCols, ", ")),
		"DROP TABLE contacts",
		"ALTER TABLE contacts_new RENAME TO contacts",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("rebuilding contacts table: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild: %w", err)
	}

	slog.Info("contacts table rebuild complete", "columns_kept", len(keep))
	return nil
}

// tableColumns returns the column names of a table, or an empty map if the
// table does not exist.
func tableColumns(db *sql.DB, table string) (map[string]struct{}, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("reading table info for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]struct{})
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table info: %w", err)
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}
