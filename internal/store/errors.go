// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"

	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// IsUniqueConstraint reports whether err is a SQLite unique-constraint
// violation. The UNIQUE constraint is the authoritative uniqueness guard;
// read-then-write pre-checks only exist for friendlier error messages.
func IsUniqueConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// IsCheckConstraint reports whether err is a SQLite CHECK-constraint
// violation (for example an empty full_name or mobile_phone).
func IsCheckConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlitelib.SQLITE_CONSTRAINT_CHECK
}
