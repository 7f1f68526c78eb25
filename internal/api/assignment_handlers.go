package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/scheduling"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

// ========== Assignment handlers (agency tier) ==========

// HandleListAssignments lists every assignment visible to the agency
func (s *RESTServer) HandleListAssignments(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	assignments, err := s.engine.ListByAgency(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": assignments,
		"total":       len(assignments),
	})
}

// HandleCreateAssignment books an ad onto a device for a time window
func (s *RESTServer) HandleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	var req struct {
		ClientID  string    `json:"clientId" validate:"required"`
		DeviceID  string    `json:"deviceId" validate:"required"`
		AdID      string    `json:"adId" validate:"required"`
		StartTime time.Time `json:"startTime"`
		EndTime   time.Time `json:"endTime"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}
	adID, err := uuid.Parse(req.AdID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	assignment, err := s.engine.Allocate(r.Context(), scheduling.AllocateRequest{
		AgencyID:  claims.AccountID,
		ClientID:  clientID,
		DeviceID:  deviceID,
		AdID:      adID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		s.respondSchedulingError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, assignment)
}

// HandleGetAssignment gets a single assignment
func (s *RESTServer) HandleGetAssignment(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	assignment, err := s.engine.Get(r.Context(), claims.AccountID, id)
	if err != nil {
		s.respondSchedulingError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, assignment)
}

// HandleUpdateAssignment moves an assignment to a new window or ad
func (s *RESTServer) HandleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	var req struct {
		AdID      string    `json:"adId" validate:"required"`
		StartTime time.Time `json:"startTime"`
		EndTime   time.Time `json:"endTime"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	adID, err := uuid.Parse(req.AdID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid ad id")
		return
	}

	assignment, err := s.engine.Reallocate(r.Context(), scheduling.ReallocateRequest{
		AgencyID:     claims.AccountID,
		AssignmentID: id,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		AdID:         adID,
	})
	if err != nil {
		s.respondSchedulingError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, assignment)
}

// HandleDeleteAssignment cancels a not-yet-completed assignment
func (s *RESTServer) HandleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	if err := s.engine.Deallocate(r.Context(), claims.AccountID, id); err != nil {
		s.respondSchedulingError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAvailabilityGrid returns the 24 hourly occupancy flags for one
// device on one day. Query params: deviceId, date (YYYY-MM-DD).
func (s *RESTServer) HandleAvailabilityGrid(w http.ResponseWriter, r *http.Request) {
	deviceID, day, ok := s.deviceDayQuery(w, r)
	if !ok {
		return
	}

	grid, err := s.engine.AvailabilityGrid(r.Context(), deviceID, day)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"deviceId": deviceID,
		"date":     day.Format("2006-01-02"),
		"hours":    grid,
	})
}

// HandleDeviceTimeline lists the assignments touching one device day
func (s *RESTServer) HandleDeviceTimeline(w http.ResponseWriter, r *http.Request) {
	deviceID, day, ok := s.deviceDayQuery(w, r)
	if !ok {
		return
	}

	assignments, err := s.engine.ListByDeviceDay(r.Context(), deviceID, day)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"deviceId":    deviceID,
		"date":        day.Format("2006-01-02"),
		"assignments": assignments,
		"total":       len(assignments),
	})
}

func (s *RESTServer) deviceDayQuery(w http.ResponseWriter, r *http.Request) (uuid.UUID, time.Time, bool) {
	deviceID, err := uuid.Parse(r.URL.Query().Get("deviceId"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return uuid.Nil, time.Time{}, false
	}

	day, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return uuid.Nil, time.Time{}, false
	}
	return deviceID, day, true
}

// respondSchedulingError maps scheduling engine errors to HTTP statuses
func (s *RESTServer) respondSchedulingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrInvalidRange):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrCompleted):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		s.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, scheduling.ErrSlotConflict):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "assignment not found")
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
