package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"quicktable/internal/metrics"
	"quicktable/internal/models"
)

// CreateTableRequest is the request body for registering a table.
type CreateTableRequest struct {
	Number int `json:"number"`
}

// UpdateTableStatusRequest is the request body for a table status change.
type UpdateTableStatusRequest struct {
	Status       string `json:"status"`
	CustomerName string `json:"customer_name"`
}

// handleTables lists or registers tables.
// GET  /api/tables
// POST /api/tables
func (s *HTTPServer) handleTables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("tables_list")
		tables, err := s.tables.ListTables(r.Context())
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tables": tables})

	case http.MethodPost:
		metrics.IncHTTP("tables_create")
		var req CreateTableRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Number <= 0 {
			writeError(w, http.StatusBadRequest, "table number must be positive")
			return
		}
		if existing, err := s.tables.GetTableByNumber(r.Context(), req.Number); err == nil && existing != nil {
			writeError(w, http.StatusConflict, fmt.Sprintf("table %d already exists", req.Number))
			return
		}

		table := &models.Table{
			ID:     uuid.NewString(),
			Number: req.Number,
			Status: models.TableFree,
		}
		if err := s.tables.CreateTable(r.Context(), table); err != nil {
			s.writeDomainError(w, err)
			return
		}

		if err := s.bus.PublishJSON("table_created", table); err != nil {
			s.logger.Warn().Err(err).Msg("table event publish failed")
		}
		writeJSON(w, http.StatusCreated, table)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleTableByID routes /api/tables/{id} and /api/tables/{id}/status.
// PATCH  /api/tables/{id}/status
// DELETE /api/tables/{id}
func (s *HTTPServer) handleTableByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tables/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "" && r.Method == http.MethodDelete:
		metrics.IncHTTP("tables_delete")
		if err := s.tables.DeleteTable(r.Context(), parts[0]); err != nil {
			s.writeDomainError(w, err)
			return
		}
		if err := s.bus.PublishJSON("table_deleted", map[string]string{"id": parts[0]}); err != nil {
			s.logger.Warn().Err(err).Msg("table event publish failed")
		}
		w.WriteHeader(http.StatusNoContent)

	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed; use PATCH")
			return
		}
		metrics.IncHTTP("tables_status")

		var req UpdateTableStatusRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !models.ValidTableStatus(req.Status) {
			writeError(w, http.StatusBadRequest, "status must be free or occupied")
			return
		}
		if req.Status == models.TableFree {
			// Freeing a table always clears the seated customer.
			req.CustomerName = ""
		}

		if err := s.tables.UpdateTableStatus(r.Context(), parts[0], req.Status, req.CustomerName); err != nil {
			s.writeDomainError(w, err)
			return
		}

		table, err := s.tables.GetTable(r.Context(), parts[0])
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		if err := s.bus.PublishJSON("table_status_changed", table); err != nil {
			s.logger.Warn().Err(err).Msg("table event publish failed")
		}
		writeJSON(w, http.StatusOK, table)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}
