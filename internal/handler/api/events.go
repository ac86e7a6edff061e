// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
)

// defaultEventsLimit bounds the admin event-log view.
const defaultEventsLimit = 100

// ListEvents handles GET /api/events. Admin only: the newest entries of the
// persisted event log (WARN and ERROR records mirrored from the logger).
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseNonNegative(r.URL.Query().Get("limit"), defaultEventsLimit)
	if limit == 0 || limit > 1000 {
		limit = defaultEventsLimit
	}

	events, err := h.queries.ListRecentEvents(r.Context(), limit)
	if err != nil {
		slog.Error("listing events", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
