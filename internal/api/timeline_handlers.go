package api

import (
	"net/http"
	"time"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

// ========== Timeline handlers (agency tier) ==========

// HandleAssignmentFormData bundles the clients, devices and ads an agency
// can book with, for populating the allocation form in one round trip.
func (s *RESTServer) HandleAssignmentFormData(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)
	ctx := r.Context()

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

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"clients": clients,
		"devices": devices,
		"ads":     ads,
	})
}

// HandleTimelineLive lists the agency's assignments running right now
func (s *RESTServer) HandleTimelineLive(w http.ResponseWriter, r *http.Request) {
	s.agencyTimeline(w, r, models.AssignmentLive)
}

// HandleTimelineUpcoming lists the agency's future assignments
func (s *RESTServer) HandleTimelineUpcoming(w http.ResponseWriter, r *http.Request) {
	s.agencyTimeline(w, r, models.AssignmentUpcoming)
}

// HandleTimelineHistory lists the agency's finished assignments
func (s *RESTServer) HandleTimelineHistory(w http.ResponseWriter, r *http.Request) {
	s.agencyTimeline(w, r, models.AssignmentCompleted)
}

func (s *RESTServer) agencyTimeline(w http.ResponseWriter, r *http.Request, states ...models.AssignmentState) {
	claims := s.claims(r)

	assignments, err := s.engine.ListByAgency(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filtered := filterByState(assignments, time.Now(), states...)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": filtered,
		"total":       len(filtered),
	})
}

// ========== Client ad views (client tier) ==========

// HandleClientLiveAds lists the client's assignments running right now
func (s *RESTServer) HandleClientLiveAds(w http.ResponseWriter, r *http.Request) {
	s.clientAdView(w, r, models.AssignmentLive)
}

// HandleClientSchedules lists the client's current and future assignments
func (s *RESTServer) HandleClientSchedules(w http.ResponseWriter, r *http.Request) {
	s.clientAdView(w, r, models.AssignmentLive, models.AssignmentUpcoming)
}

// HandleClientAdHistory lists the client's finished assignments
func (s *RESTServer) HandleClientAdHistory(w http.ResponseWriter, r *http.Request) {
	s.clientAdView(w, r, models.AssignmentCompleted)
}

func (s *RESTServer) clientAdView(w http.ResponseWriter, r *http.Request, states ...models.AssignmentState) {
	claims := s.claims(r)

	assignments, err := s.engine.ListByClient(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filtered := filterByState(assignments, time.Now(), states...)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": filtered,
		"total":       len(filtered),
	})
}

func filterByState(assignments []*models.Assignment, now time.Time, states ...models.AssignmentState) []*models.Assignment {
	out := make([]*models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		state := a.State(now)
		for _, want := range states {
			if state == want {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
