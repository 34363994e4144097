package api

import (
	"encoding/json"
	"net/http"

	"quicktable/internal/cache"
	"quicktable/internal/metrics"
)

// CheckAvailabilityRequest is the request body for
// POST /api/availability/check.
type CheckAvailabilityRequest struct {
	TableID string `json:"table_id"`
	Date    string `json:"date"` // Format: YYYY-MM-DD
	Time    string `json:"time"` // Format: HH:MM
}

// handleCheckAvailability answers whether a table can be booked at a
// date and time.
// POST /api/availability/check
func (s *HTTPServer) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_check")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req CheckAvailabilityRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.bookings.CheckAvailability(r.Context(), req.TableID, req.Date, req.Time)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleListSlots returns the bookable half-hour marks for a date.
// GET /api/availability/slots?date=YYYY-MM-DD
func (s *HTTPServer) handleListSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_slots")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	key := cache.SlotsKey(date)
	var slots []string
	if s.cache.Get(r.Context(), key, &slots) {
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
		return
	}

	slots, err := s.bookings.ListAvailableSlots(r.Context(), date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if slots == nil {
		slots = []string{}
	}

	s.cache.Set(r.Context(), key, slots)
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
}
