package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/signage-server/signage-server-pro/internal/complaints"
	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

// ========== Complaint handlers ==========

// The ledger trims and validates messages, replies and statuses itself.
type complaintMessage struct {
	Message string `json:"message"`
}

type complaintReply struct {
	Reply  string `json:"reply"`
	Status string `json:"status"`
}

// HandleSubmitClientComplaint lets a client raise a complaint to its agency
func (s *RESTServer) HandleSubmitClientComplaint(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	var req complaintMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	complaint, err := s.complaints.SubmitFromClient(r.Context(), claims.AccountID, req.Message)
	if err != nil {
		s.respondComplaintError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, complaint)
}

// HandleListOwnClientComplaints lists the complaints a client submitted
func (s *RESTServer) HandleListOwnClientComplaints(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	list, err := s.complaints.ListByClient(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": list,
		"total":      len(list),
	})
}

// HandleEditClientComplaint lets a client rewrite a still-pending complaint
func (s *RESTServer) HandleEditClientComplaint(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var req complaintMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	complaint, err := s.complaints.EditClientMessage(r.Context(), claims.AccountID, id, req.Message)
	if err != nil {
		s.respondComplaintError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, complaint)
}

// HandleListClientComplaints lists the complaints addressed to the agency
func (s *RESTServer) HandleListClientComplaints(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	list, err := s.complaints.ListForAgency(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": list,
		"total":      len(list),
	})
}

// HandleReplyClientComplaint lets the agency reply and settle a complaint
func (s *RESTServer) HandleReplyClientComplaint(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var req complaintReply
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	complaint, err := s.complaints.ReplyToClient(r.Context(), claims.AccountID, id, req.Reply, models.ComplaintStatus(req.Status))
	if err != nil {
		s.respondComplaintError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, complaint)
}

// HandleSubmitAgencyComplaint lets an agency raise a complaint to its master
func (s *RESTServer) HandleSubmitAgencyComplaint(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	var req complaintMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	complaint, err := s.complaints.SubmitFromAgency(r.Context(), claims.AccountID, req.Message)
	if err != nil {
		s.respondComplaintError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, complaint)
}

// HandleListOwnAgencyComplaints lists the complaints an agency submitted
func (s *RESTServer) HandleListOwnAgencyComplaints(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	list, err := s.complaints.ListByAgency(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": list,
		"total":      len(list),
	})
}

// HandleEditAgencyComplaint lets an agency rewrite a still-pending complaint
func (s *RESTServer) HandleEditAgencyComplaint(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var req complaintMessage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	complaint, err := s.complaints.EditAgencyMessage(r.Context(), claims.AccountID, id, req.Message)
	if err != nil {
		s.respondComplaintError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, complaint)
}

// HandleListAgencyComplaints lists the complaints addressed to the master
func (s *RESTServer) HandleListAgencyComplaints(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	list, err := s.complaints.ListForMaster(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": list,
		"total":      len(list),
	})
}

// HandleReplyAgencyComplaint lets the master reply and settle a complaint
func (s *RESTServer) HandleReplyAgencyComplaint(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid complaint id")
		return
	}

	var req complaintReply
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	complaint, err := s.complaints.ReplyToAgency(r.Context(), claims.AccountID, id, req.Reply, models.ComplaintStatus(req.Status))
	if err != nil {
		s.respondComplaintError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, complaint)
}

// respondComplaintError maps complaint ledger errors to HTTP statuses
func (s *RESTServer) respondComplaintError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, complaints.ErrEmptyMessage), errors.Is(err, complaints.ErrInvalidStatus):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, complaints.ErrNotEditable), errors.Is(err, complaints.ErrForbidden):
		s.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "complaint not found")
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
