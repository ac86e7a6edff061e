// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package importer implements bulk contact ingestion from Excel spreadsheets.
// It maps the Persian column headers of the standard phonebook template to
// canonical contact fields and inserts rows one at a time, collecting per-row
// failures instead of aborting the file.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Import failure modes. File-level errors abort the whole operation with
// zero imports; per-row failures are reported in Result.Errors instead.
var (
	ErrUnsupportedFormat = errors.New("only Excel files (.xlsx, .xls) are supported")
	ErrInvalidFile       = errors.New("invalid Excel file format")
	ErrMissingNameColumn = errors.New("required column 'نام کامل' (Full Name) not found")
)

// headerFullName is the mandatory header; a file without it is rejected
// before any row is processed.
const headerFullName = "نام کامل"

// columnMapping translates the localized template headers to canonical
// contact field names.
var columnMapping = map[string]string{
	"نام کامل":           "full_name",
	"شرکت اصلی":          "main_company",
	"سمت":                "job_title",
	"موبایل":             "mobile_phone",
	"تلفن دفتر 1":        "office_phone1",
	"داخلی 1":            "extension1",
	"تلفن دفتر 2":        "office_phone2",
	"داخلی 2":            "extension2",
	"تلفن دفتر 3":        "office_phone3",
	"داخلی 3":            "extension3",
	"ایمیل شخصی":         "email",
	"نام مدیر دفتر 1":    "office_manager_name1",
	"موبایل مدیر دفتر 1": "office_manager_mobile1",
	"نام مدیر دفتر 2":    "office_manager_name2",
	"موبایل مدیر دفتر 2": "office_manager_mobile2",
	"نام مدیر دفتر 3":    "office_manager_name3",
	"موبایل مدیر دفتر 3": "office_manager_mobile3",
	"ایمیل دفتر":         "office_email",
	"دسته بندی موضوعی":   "subject_category",
	"کشور":               "country",
	"آدرس":               "address",
	"کد پستی":            "postal_code",
	"توضیحات":            "description",
}

// maxReportedErrors caps the error messages carried back to the caller; the
// full failure count is still reported via Result.ErrorCount.
const maxReportedErrors = 10

// Record is one resolved spreadsheet row in canonical field form. Cells
// absent from the sheet are empty strings.
type Record struct {
	FullName             string
	MainCompany          string
	JobTitle             string
	MobilePhone          string
	OfficePhone1         string
	Extension1           string
	OfficePhone2         string
	Extension2           string
	OfficePhone3         string
	Extension3           string
	Email                string
	OfficeManagerName1   string
	OfficeManagerMobile1 string
	OfficeManagerName2   string
	OfficeManagerMobile2 string
	OfficeManagerName3   string
	OfficeManagerMobile3 string
	OfficeEmail          string
	SubjectCategory      string
	Country              string
	Address              string
	PostalCode           string
	Description          string
}

// InsertFunc persists one resolved record. Failures are recorded per row and
// do not stop the import.
type InsertFunc func(ctx context.Context, rec Record) error

// Result summarizes an import run.
type Result struct {
	BatchID       string
	ImportedCount int
	Errors        []string
	ErrorCount    int
}

// Importer parses spreadsheets and feeds resolved rows to an insert function.
type Importer struct {
	insert InsertFunc
}

// New creates an Importer over the given insert function.
func New(insert InsertFunc) *Importer {
	return &Importer{insert: insert}
}

// Import reads an Excel file and inserts its rows as contacts.
//
// The import is deliberately not atomic: every row is attempted, failures
// are collected with their 1-based spreadsheet row number (the header is row
// 1, so the first data row reports as row 2), and the imported count is
// maximized. Rows whose resolved full name is empty are skipped silently.
func (imp *Importer) Import(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
		return nil, ErrUnsupportedFormat
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingNameColumn
	}

	// Map column index -> canonical field from the header row.
	fieldByCol := make(map[int]string)
	hasName := false
	for i, header := range rows[0] {
		header = strings.TrimSpace(header)
		if field, ok := columnMapping[header]; ok {
			fieldByCol[i] = field
			if header == headerFullName {
				hasName = true
			}
		}
	}
	if !hasName {
		return nil, ErrMissingNameColumn
	}

	result := &Result{BatchID: uuid.New().String()}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, offset by the header row

		var rec Record
		for col, field := range fieldByCol {
			var value string
			if col < len(row) {
				value = strings.TrimSpace(row[col])
			}
			assign(&rec, field, value)
		}

		if rec.FullName == "" {
			continue
		}

		if err := imp.insert(ctx, rec); err != nil {
			result.ErrorCount++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			}
			continue
		}
		result.ImportedCount++
	}

	slog.Info("contact import finished",
		"batch_id", result.BatchID,
		"imported", result.ImportedCount,
		"failed", result.ErrorCount)

	return result, nil
}

// assign sets the canonical field of a record by name.
func assign(rec *Record, field, value string) {
	switch field {
	case "full_name":
		rec.FullName = value
	case "main_company":
		rec.MainCompany = value
	case "job_title":
		rec.JobTitle = value
	case "mobile_phone":
		rec.MobilePhone = value
	case "office_phone1":
		rec.OfficePhone1 = value
	case "extension1":
		rec.Extension1 = value
	case "office_phone2":
		rec.OfficePhone2 = value
	case "extension2":
		rec.Extension2 = value
	case "office_phone3":
		rec.OfficePhone3 = value
	case "extension3":
		rec.Extension3 = value
	case "email":
		rec.Email = value
	case "office_manager_name1":
		rec.OfficeManagerName1 = value
	case "office_manager_mobile1":
		rec.OfficeManagerMobile1 = value
	case "office_manager_name2":
		rec.OfficeManagerName2 = value
	case "office_manager_mobile2":
		rec.OfficeManagerMobile2 = value
	case "office_manager_name3":
		rec.OfficeManagerName3 = value
	case "office_manager_mobile3":
		rec.OfficeManagerMobile3 = value
	case "office_email":
		rec.OfficeEmail = value
	case "subject_category":
		rec.SubjectCategory = value
	case "country":
		rec.Country = value
	case "address":
		rec.Address = value
	case "postal_code":
		rec.PostalCode = value
	case "description":
		rec.Description = value
	}
}
