package api

import (
	"net/http"

	"github.com/signage-server/signage-server-pro/internal/auth"
	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

func deviceStatusCounts(devices []*models.Device) map[string]int {
	counts := map[string]int{}
	for _, d := range devices {
		counts[string(d.Status)]++
	}
	return counts
}

// HandleDashboard returns role-appropriate summary counts
func (s *RESTServer) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)
	ctx := r.Context()

	switch claims.Role {
	case auth.RoleMaster:
		agencies, err := s.store.ListAgencies(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		devices, err := s.store.ListDevices(ctx, storage.DeviceFilters{MasterID: &claims.AccountID})
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		complaints, err := s.complaints.ListForMaster(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		open := 0
		for _, c := range complaints {
			if c.Status == models.ComplaintPending {
				open++
			}
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"agencies":       len(agencies),
			"devices":        len(devices),
			"deviceStatus":   deviceStatusCounts(devices),
			"complaints":     len(complaints),
			"openComplaints": open,
		})

	case auth.RoleAgency:
		clients, err := s.store.ListAgencyClients(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		devices, err := s.store.ListDevices(ctx, storage.DeviceFilters{AgencyID: &claims.AccountID})
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		ads, err := s.store.ListAds(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		assignments, err := s.engine.ListByAgency(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		bills, err := s.billing.ListByAgency(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		complaints, err := s.complaints.ListForAgency(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		open := 0
		for _, c := range complaints {
			if c.Status == models.ComplaintPending {
				open++
			}
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"clients":        len(clients),
			"devices":        len(devices),
			"deviceStatus":   deviceStatusCounts(devices),
			"ads":            len(ads),
			"assignments":    len(assignments),
			"bills":          len(bills),
			"openComplaints": open,
		})

	case auth.RoleAgencyClient:
		assignments, err := s.engine.ListByClient(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		devices, err := s.store.ListDevices(ctx, storage.DeviceFilters{ClientID: &claims.AccountID})
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		bills, err := s.billing.ListByClient(ctx, claims.AccountID)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"assignments": len(assignments),
			"devices":     len(devices),
			"bills":       len(bills),
		})

	default:
		s.respondError(w, http.StatusForbidden, "unknown role")
	}
}
