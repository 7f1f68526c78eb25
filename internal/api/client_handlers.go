package api

import (
	"net/http"

	"github.com/signage-server/signage-server-pro/internal/storage"
)

// ========== Client portal handlers (client tier) ==========

// HandleClientAssignments lists the assignments booked for the client
func (s *RESTServer) HandleClientAssignments(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	assignments, err := s.engine.ListByClient(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": assignments,
		"total":       len(assignments),
	})
}

// HandleClientDevices lists the devices linked to the client
func (s *RESTServer) HandleClientDevices(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	devices, err := s.store.ListDevices(r.Context(), storage.DeviceFilters{
		ClientID: &claims.AccountID,
	})
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"devices": devices,
		"total":   len(devices),
	})
}

// HandleClientBills lists the bills issued to the client
func (s *RESTServer) HandleClientBills(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	bills, err := s.billing.ListByClient(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"bills": bills,
		"total": len(bills),
	})
}
