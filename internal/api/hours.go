package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"quicktable/internal/cache"
	"quicktable/internal/metrics"
	"quicktable/internal/models"
	"quicktable/internal/reconcile"
	"quicktable/internal/schedule"
	"quicktable/internal/slots"
)

// handleHours routes /api/hours/{date} and /api/hours/{date}/reconcile.
// GET  /api/hours/{date}
// PUT  /api/hours/{date}
// POST /api/hours/{date}/reconcile
func (s *HTTPServer) handleHours(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/hours/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleHoursByDate(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "reconcile":
		s.handleReconcile(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleHoursByDate(w http.ResponseWriter, r *http.Request, date string) {
	if !models.ValidDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("hours_get")
		record, err := s.hours.Get(r.Context(), date)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		if record == nil {
			// No record means the restaurant runs default hours.
			record = &models.RestaurantHours{
				Date:         date,
				IsOpen:       true,
				OpenTime:     models.DefaultOpenTime,
				CloseTime:    models.DefaultCloseTime,
				TimeSlots:    slots.GenerateDefault(),
				BlockedHours: []string{},
			}
		}
		writeJSON(w, http.StatusOK, record)

	case http.MethodPut:
		metrics.IncHTTP("hours_upsert")
		var upd schedule.Update
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if upd.OpenTime != nil {
			if _, err := models.ParseClock(*upd.OpenTime); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		if upd.CloseTime != nil {
			if _, err := models.ParseClock(*upd.CloseTime); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		if upd.BlockedHours != nil {
			for _, raw := range *upd.BlockedHours {
				if _, err := models.ParseBlockedRange(raw); err != nil {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
			}
		}

		record, affectsSlots, err := s.hours.Upsert(r.Context(), date, upd)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}

		summary := reconcile.Summary{Date: date}
		if affectsSlots {
			s.cache.Invalidate(r.Context(), cache.SlotsKey(date))
			summary, err = s.reconciler.ReconcileDate(r.Context(), date)
			if err != nil {
				s.logger.Error().Err(err).Str("date", date).Msg("reconcile after hours change failed")
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"hours":     record,
			"reconcile": summary,
		})

	case http.MethodDelete:
		metrics.IncHTTP("hours_delete")
		if err := s.hours.Delete(r.Context(), date); err != nil {
			s.writeDomainError(w, err)
			return
		}
		// The date now runs on default hours again.
		s.cache.Invalidate(r.Context(), cache.SlotsKey(date))
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReconcile(w http.ResponseWriter, r *http.Request, date string) {
	metrics.IncHTTP("hours_reconcile")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	if !models.ValidDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	summary, err := s.reconciler.ReconcileDate(r.Context(), date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.cache.Invalidate(r.Context(), cache.SlotsKey(date))
	writeJSON(w, http.StatusOK, summary)
}
