package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"quicktable/internal/booking"
	"quicktable/internal/cache"
	"quicktable/internal/export"
	"quicktable/internal/metrics"
)

// handleReservations lists or creates reservations.
// GET  /api/reservations?date=YYYY-MM-DD
// POST /api/reservations
func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("reservations_list")
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "date is required")
			return
		}
		includeArchived := r.URL.Query().Get("include") == "archived"
		reservations, err := s.bookings.ListReservations(r.Context(), date, includeArchived)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})

	case http.MethodPost:
		metrics.IncHTTP("reservations_create")
		var req booking.CreateRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		reservation, err := s.bookings.CreateReservation(r.Context(), req)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reservation)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// UpdateStatusRequest is the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// handleReservationByID routes /api/reservations/{id} paths.
// PATCH  /api/reservations/{id}/status
// DELETE /api/reservations/{id}
func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/reservations/")
	parts := strings.Split(rest, "/")

	if len(parts) == 1 && parts[0] != "" {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed; use DELETE")
			return
		}
		metrics.IncHTTP("reservations_delete")
		if err := s.bookings.DeleteReservation(r.Context(), parts[0]); err != nil {
			s.writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if len(parts) != 2 || parts[1] != "status" || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use PATCH")
		return
	}
	metrics.IncHTTP("reservations_status")

	var req UpdateStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reservation, err := s.bookings.UpdateReservationStatus(r.Context(), parts[0], req.Status)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// A status change can free up a previously blocked slot list.
	s.cache.Invalidate(r.Context(), cache.SlotsKey(reservation.ReservationDate))
	writeJSON(w, http.StatusOK, reservation)
}

// handleExportReservations streams a date's reservations as an xlsx day
// sheet.
// GET /api/reservations/export?date=YYYY-MM-DD
func (s *HTTPServer) handleExportReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations_export")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	includeArchived := r.URL.Query().Get("include") == "archived"
	reservations, err := s.bookings.ListReservations(r.Context(), date, includeArchived)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDaySheet(&buf, date, reservations); err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("day sheet export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reservations_%s.xlsx"`, date))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
