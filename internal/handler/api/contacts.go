// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/phonebook-go/internal/importer"
	"github.com/olegiv/phonebook-go/internal/middleware"
	"github.com/olegiv/phonebook-go/internal/store"
)

// defaultSearchLimit is the page size when the client does not send one.
const defaultSearchLimit = 50

// ContactRequest is the payload for creating or replacing a contact.
// Requests use camelCase keys while responses use the snake_case column
// names, matching what the bundled front-end pages send and expect.
type ContactRequest struct {
	FullName             string `json:"fullName" validate:"required"`
	MainCompany          string `json:"mainCompany"`
	JobTitle             string `json:"jobTitle"`
	MobilePhone          string `json:"mobilePhone" validate:"required"`
	OfficePhone1         string `json:"officePhone1"`
	Extension1           string `json:"extension1"`
	OfficePhone2         string `json:"officePhone2"`
	Extension2           string `json:"extension2"`
	OfficePhone3         string `json:"officePhone3"`
	Extension3           string `json:"extension3"`
	Email                string `json:"email"`
	OfficeManagerName1   string `json:"officeManagerName1"`
	OfficeManagerMobile1 string `json:"officeManagerMobile1"`
	OfficeManagerName2   string `json:"officeManagerName2"`
	OfficeManagerMobile2 string `json:"officeManagerMobile2"`
	OfficeManagerName3   string `json:"officeManagerName3"`
	OfficeManagerMobile3 string `json:"officeManagerMobile3"`
	OfficeEmail          string `json:"officeEmail"`
	SubjectCategory      string `json:"subjectCategory"`
	Country              string `json:"country"`
	Address              string `json:"address"`
	PostalCode           string `json:"postalCode"`
	Description          string `json:"description"`
}

// params maps the request onto store parameters, trimming whitespace and
// stripping markup from the free-text fields.
func (h *Handler) contactParams(req ContactRequest) store.CreateContactParams {
	return store.CreateContactParams{
		FullName:             strings.TrimSpace(req.FullName),
		MainCompany:          strings.TrimSpace(req.MainCompany),
		JobTitle:             strings.TrimSpace(req.JobTitle),
		MobilePhone:          strings.TrimSpace(req.MobilePhone),
		OfficePhone1:         strings.TrimSpace(req.OfficePhone1),
		Extension1:           strings.TrimSpace(req.Extension1),
		OfficePhone2:         strings.TrimSpace(req.OfficePhone2),
		Extension2:           strings.TrimSpace(req.Extension2),
		OfficePhone3:         strings.TrimSpace(req.OfficePhone3),
		Extension3:           strings.TrimSpace(req.Extension3),
		Email:                strings.TrimSpace(req.Email),
		OfficeManagerName1:   strings.TrimSpace(req.OfficeManagerName1),
		OfficeManagerMobile1: strings.TrimSpace(req.OfficeManagerMobile1),
		OfficeManagerName2:   strings.TrimSpace(req.OfficeManagerName2),
		OfficeManagerMobile2: strings.TrimSpace(req.OfficeManagerMobile2),
		OfficeManagerName3:   strings.TrimSpace(req.OfficeManagerName3),
		OfficeManagerMobile3: strings.TrimSpace(req.OfficeManagerMobile3),
		OfficeEmail:          strings.TrimSpace(req.OfficeEmail),
		SubjectCategory:      strings.TrimSpace(req.SubjectCategory),
		Country:              strings.TrimSpace(req.Country),
		Address:              h.sanitizer.Sanitize(strings.TrimSpace(req.Address)),
		PostalCode:           strings.TrimSpace(req.PostalCode),
		Description:          h.sanitizer.Sanitize(strings.TrimSpace(req.Description)),
	}
}

// contactValidationMessage turns a validator error into the field-specific
// message the front-end displays.
func contactValidationMessage(req ContactRequest) string {
	if strings.TrimSpace(req.FullName) == "" {
		return "Full name is required"
	}
	return "Mobile phone is required"
}

// ListContacts handles GET /api/contacts.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.queries.ListContacts(r.Context())
	if err != nil {
		slog.Error("listing contacts", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching contacts")
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// CreateContact handles POST /api/contacts.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := h.contactParams(req)
	if p.FullName == "" || p.MobilePhone == "" {
		writeError(w, http.StatusBadRequest, contactValidationMessage(req))
		return
	}

	id, err := h.queries.CreateContact(r.Context(), p)
	if err != nil {
		if store.IsCheckConstraint(err) {
			writeError(w, http.StatusBadRequest, contactValidationMessage(req))
			return
		}
		slog.Error("creating contact", "error", err)
		writeError(w, http.StatusInternalServerError, "Error adding contact")
		return
	}

	slog.Info("contact created", "contact_id", id, "user_id", middleware.GetUserID(r))
	writeMessage(w, http.StatusCreated, map[string]any{
		"message": "Contact added successfully",
		"id":      id,
	})
}

// GetContact handles GET /api/contacts/{id}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contact id")
		return
	}
	contact, err := h.queries.GetContact(r.Context(), id)
	if err != nil {
		notFoundOr(w, err, id, "Contact not found", "Error fetching contact")
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// UpdateContact handles PUT /api/contacts/{id}. The update is a full
// replacement: fields absent from the payload are written back as empty.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contact id")
		return
	}
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := h.contactParams(req)
	if p.FullName == "" || p.MobilePhone == "" {
		writeError(w, http.StatusBadRequest, contactValidationMessage(req))
		return
	}

	if err := h.queries.UpdateContact(r.Context(), id, p); err != nil {
		if store.IsCheckConstraint(err) {
			writeError(w, http.StatusBadRequest, contactValidationMessage(req))
			return
		}
		notFoundOr(w, err, id, "Contact not found", "Error updating contact")
		return
	}

	slog.Info("contact updated", "contact_id", id, "user_id", middleware.GetUserID(r))
	writeMessage(w, http.StatusOK, map[string]any{"message": "Contact updated successfully"})
}

// DeleteContact handles DELETE /api/contacts/{id}.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contact id")
		return
	}
	if err := h.queries.DeleteContact(r.Context(), id); err != nil {
		notFoundOr(w, err, id, "Contact not found", "Error deleting contact")
		return
	}
	slog.Info("contact deleted", "contact_id", id, "user_id", middleware.GetUserID(r))
	writeMessage(w, http.StatusOK, map[string]any{"message": "Contact deleted successfully"})
}

// SearchContacts handles GET /api/contacts/search.
//
// Query parameters: term (q accepted as an alias), offset, limit, sort_by,
// sort_direction, and export_all=true to fetch every match in one response.
func (h *Handler) SearchContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	term := q.Get("term")
	if term == "" {
		term = q.Get("q")
	}

	p := store.SearchContactsParams{
		Term:          strings.TrimSpace(term),
		Offset:        parseNonNegative(q.Get("offset"), 0),
		Limit:         parseNonNegative(q.Get("limit"), defaultSearchLimit),
		SortBy:        q.Get("sort_by"),
		SortDirection: q.Get("sort_direction"),
		ExportAll:     q.Get("export_all") == "true",
	}

	contacts, total, err := h.queries.SearchContacts(r.Context(), p)
	if err != nil {
		slog.Error("searching contacts", "error", err, "term", p.Term)
		writeError(w, http.StatusInternalServerError, "Error searching contacts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contacts":    contacts,
		"total_count": total,
		"offset":      p.Offset,
		"limit":       p.Limit,
	})
}

// parseNonNegative parses a query value, falling back to def when absent,
// malformed, or negative.
func parseNonNegative(raw string, def int64) int64 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// ImportContacts handles POST /api/contacts/import: a multipart upload of an
// .xlsx/.xls spreadsheet whose rows are inserted independently, so one bad
// row never discards the rest of the file.
func (h *Handler) ImportContacts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	imp := importer.New(func(ctx context.Context, rec importer.Record) error {
		_, err := h.queries.CreateContact(ctx, store.CreateContactParams{
			FullName:             rec.FullName,
			MainCompany:          rec.MainCompany,
			JobTitle:             rec.JobTitle,
			MobilePhone:          rec.MobilePhone,
			OfficePhone1:         rec.OfficePhone1,
			Extension1:           rec.Extension1,
			OfficePhone2:         rec.OfficePhone2,
			Extension2:           rec.Extension2,
			OfficePhone3:         rec.OfficePhone3,
			Extension3:           rec.Extension3,
			Email:                rec.Email,
			OfficeManagerName1:   rec.OfficeManagerName1,
			OfficeManagerMobile1: rec.OfficeManagerMobile1,
			OfficeManagerName2:   rec.OfficeManagerName2,
			OfficeManagerMobile2: rec.OfficeManagerMobile2,
			OfficeManagerName3:   rec.OfficeManagerName3,
			OfficeManagerMobile3: rec.OfficeManagerMobile3,
			OfficeEmail:          rec.OfficeEmail,
			SubjectCategory:      rec.SubjectCategory,
			Country:              rec.Country,
			Address:              h.sanitizer.Sanitize(rec.Address),
			PostalCode:           rec.PostalCode,
			Description:          h.sanitizer.Sanitize(rec.Description),
		})
		return err
	})

	result, err := imp.Import(r.Context(), file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrUnsupportedFormat),
			errors.Is(err, importer.ErrInvalidFile),
			errors.Is(err, importer.ErrMissingNameColumn):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("importing contacts", "error", err, "filename", header.Filename)
			writeError(w, http.StatusInternalServerError, "Error importing contacts")
		}
		return
	}

	slog.Info("contacts imported",
		"batch_id", result.BatchID,
		"imported", result.ImportedCount,
		"failed", result.ErrorCount,
		"user_id", middleware.GetUserID(r))

	resp := map[string]any{
		"message":        "Import completed",
		"imported_count": result.ImportedCount,
	}
	if result.ErrorCount > 0 {
		resp["errors"] = result.Errors
		resp["error_count"] = result.ErrorCount
	}
	writeJSON(w, http.StatusOK, resp)
}
