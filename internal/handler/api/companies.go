// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/phonebook-go/internal/middleware"
	"github.com/olegiv/phonebook-go/internal/store"
)

// CompanyRequest is the payload for creating or replacing a company.
type CompanyRequest struct {
	CompanyName string `json:"companyName" validate:"required"`
	SubCompany1 string `json:"subCompany1"`
	SubCompany2 string `json:"subCompany2"`
}

func companyParams(req CompanyRequest) store.CreateCompanyParams {
	return store.CreateCompanyParams{
		CompanyName: strings.TrimSpace(req.CompanyName),
		SubCompany1: strings.TrimSpace(req.SubCompany1),
		SubCompany2: strings.TrimSpace(req.SubCompany2),
	}
}

// ListCompanies handles GET /api/companies.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.queries.ListCompanies(r.Context())
	if err != nil {
		slog.Error("listing companies", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching companies")
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

// CreateCompany handles POST /api/companies.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := companyParams(req)
	if p.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}

	id, err := h.queries.CreateCompany(r.Context(), p)
	if err != nil {
		if store.IsUniqueConstraint(err) {
			writeError(w, http.StatusConflict, "Company already exists")
			return
		}
		slog.Error("creating company", "error", err)
		writeError(w, http.StatusInternalServerError, "Error adding company")
		return
	}

	slog.Info("company created", "company_id", id, "user_id", middleware.GetUserID(r))
	writeMessage(w, http.StatusCreated, map[string]any{
		"message": "Company added successfully",
		"id":      id,
	})
}

// GetCompany handles GET /api/companies/{id}.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid company id")
		return
	}
	company, err := h.queries.GetCompany(r.Context(), id)
	if err != nil {
		notFoundOr(w, err, id, "Company not found", "Error fetching company")
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// UpdateCompany handles PUT /api/companies/{id}.
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid company id")
		return
	}
	var req CompanyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := companyParams(req)
	if p.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}

	// Renaming to a name held by a different company is a conflict;
	// re-submitting the current name is fine.
	taken, err := h.queries.CompanyNameExists(r.Context(), p.CompanyName, id)
	if err != nil {
		slog.Error("checking company name", "error", err)
		writeError(w, http.StatusInternalServerError, "Error updating company")
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "Company name already exists")
		return
	}

	if err := h.queries.UpdateCompany(r.Context(), id, p); err != nil {
		if store.IsUniqueConstraint(err) {
			writeError(w, http.StatusConflict, "Company name already exists")
			return
		}
		notFoundOr(w, err, id, "Company not found", "Error updating company")
		return
	}

	slog.Info("company updated", "company_id", id, "user_id", middleware.GetUserID(r))
	writeMessage(w, http.StatusOK, map[string]any{"message": "Company updated successfully"})
}

// DeleteCompany handles DELETE /api/companies/{id}.
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid company id")
		return
	}
	if err := h.queries.DeleteCompany(r.Context(), id); err != nil {
		notFoundOr(w, err, id, "Company not found", "Error deleting company")
		return
	}
	slog.Info("company deleted", "company_id", id, "user_id", middleware.GetUserID(r))
	writeMessage(w, http.StatusOK, map[string]any{"message": "Company deleted successfully"})
}

// UniqueCompaniesFromContacts handles GET /api/companies/unique-from-contacts:
// the distinct non-empty main_company values across all contacts, used by the
// entry form's company picker.
func (h *Handler) UniqueCompaniesFromContacts(w http.ResponseWriter, r *http.Request) {
	names, err := h.queries.ListDistinctCompanies(r.Context())
	if err != nil {
		slog.Error("listing distinct contact companies", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching companies")
		return
	}
	writeJSON(w, http.StatusOK, names)
}
