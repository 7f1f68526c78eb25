package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
	"github.com/signage-server/signage-server-pro/pkg/crypto"
)

// ========== Agency handlers (master tier) ==========

// HandleListAgencies lists the master's agencies
func (s *RESTServer) HandleListAgencies(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	agencies, err := s.store.ListAgencies(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"agencies": agencies,
		"total":    len(agencies),
	})
}

// HandleCreateAgency creates an agency under the master
func (s *RESTServer) HandleCreateAgency(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	var req struct {
		Name     string `json:"name" validate:"required,min=3,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Phone    string `json:"phone"`
		Area     string `json:"area"`
		City     string `json:"city"`
		State    string `json:"state"`
		Country  string `json:"country"`
		Pincode  string `json:"pincode"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	agency := &models.Agency{
		MasterID:     claims.AccountID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Area:         req.Area,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Pincode:      req.Pincode,
	}

	if err := s.store.CreateAgency(r.Context(), agency); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.respondError(w, http.StatusConflict, "agency with this email already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, agency)
}

// getOwnedAgency loads an agency and checks it belongs to the caller
func (s *RESTServer) getOwnedAgency(w http.ResponseWriter, r *http.Request) *models.Agency {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid agency id")
		return nil
	}

	agency, err := s.store.GetAgency(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "agency not found")
			return nil
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil
	}

	if agency.MasterID != claims.AccountID {
		s.respondError(w, http.StatusNotFound, "agency not found")
		return nil
	}
	return agency
}

// HandleGetAgency gets one of the master's agencies
func (s *RESTServer) HandleGetAgency(w http.ResponseWriter, r *http.Request) {
	agency := s.getOwnedAgency(w, r)
	if agency == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, agency)
}

// HandleUpdateAgency updates an agency's profile fields
func (s *RESTServer) HandleUpdateAgency(w http.ResponseWriter, r *http.Request) {
	agency := s.getOwnedAgency(w, r)
	if agency == nil {
		return
	}

	var req struct {
		Name    string `json:"name" validate:"required,min=3,max=100"`
		Phone   string `json:"phone"`
		Area    string `json:"area"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
		Pincode string `json:"pincode"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	agency.Name = req.Name
	agency.Phone = req.Phone
	agency.Area = req.Area
	agency.City = req.City
	agency.State = req.State
	agency.Country = req.Country
	agency.Pincode = req.Pincode

	if err := s.store.UpdateAgency(r.Context(), agency); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, agency)
}

// HandleDeleteAgency deletes an agency
func (s *RESTServer) HandleDeleteAgency(w http.ResponseWriter, r *http.Request) {
	agency := s.getOwnedAgency(w, r)
	if agency == nil {
		return
	}

	if err := s.store.DeleteAgency(r.Context(), agency.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ========== Agency client handlers (agency tier) ==========

// HandleListAgencyClients lists the agency's clients
func (s *RESTServer) HandleListAgencyClients(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	clients, err := s.store.ListAgencyClients(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"clients": clients,
		"total":   len(clients),
	})
}

// HandleCreateAgencyClient creates a client under the agency
func (s *RESTServer) HandleCreateAgencyClient(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	var req struct {
		Name           string `json:"name" validate:"required,min=3,max=100"`
		BusinessName   string `json:"businessName" validate:"required,min=3,max=100"`
		BusinessEmail  string `json:"businessEmail" validate:"required,email"`
		Password       string `json:"password" validate:"required,min=6"`
		WhatsappNumber string `json:"whatsappNumber"`
		Area           string `json:"area"`
		City           string `json:"city"`
		State          string `json:"state"`
		Country        string `json:"country"`
		Pincode        string `json:"pincode"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	client := &models.AgencyClient{
		AgencyID:       claims.AccountID,
		Name:           req.Name,
		BusinessName:   req.BusinessName,
		BusinessEmail:  req.BusinessEmail,
		PasswordHash:   hash,
		WhatsappNumber: req.WhatsappNumber,
		Area:           req.Area,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		Pincode:        req.Pincode,
	}

	if err := s.store.CreateAgencyClient(r.Context(), client); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.respondError(w, http.StatusConflict, "client with this email already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, client)
}

// getOwnedClient loads a client and checks it belongs to the caller
func (s *RESTServer) getOwnedClient(w http.ResponseWriter, r *http.Request) *models.AgencyClient {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid client id")
		return nil
	}

	client, err := s.store.GetAgencyClient(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "client not found")
			return nil
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil
	}

	if client.AgencyID != claims.AccountID {
		s.respondError(w, http.StatusNotFound, "client not found")
		return nil
	}
	return client
}

// HandleGetAgencyClient gets one of the agency's clients
func (s *RESTServer) HandleGetAgencyClient(w http.ResponseWriter, r *http.Request) {
	client := s.getOwnedClient(w, r)
	if client == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, client)
}

// HandleUpdateAgencyClient updates a client's profile fields
func (s *RESTServer) HandleUpdateAgencyClient(w http.ResponseWriter, r *http.Request) {
	client := s.getOwnedClient(w, r)
	if client == nil {
		return
	}

	var req struct {
		Name           string `json:"name" validate:"required,min=3,max=100"`
		BusinessName   string `json:"businessName" validate:"required,min=3,max=100"`
		WhatsappNumber string `json:"whatsappNumber"`
		Area           string `json:"area"`
		City           string `json:"city"`
		State          string `json:"state"`
		Country        string `json:"country"`
		Pincode        string `json:"pincode"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	client.Name = req.Name
	client.BusinessName = req.BusinessName
	client.WhatsappNumber = req.WhatsappNumber
	client.Area = req.Area
	client.City = req.City
	client.State = req.State
	client.Country = req.Country
	client.Pincode = req.Pincode

	if err := s.store.UpdateAgencyClient(r.Context(), client); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, client)
}

// HandleDeleteAgencyClient deletes a client
func (s *RESTServer) HandleDeleteAgencyClient(w http.ResponseWriter, r *http.Request) {
	client := s.getOwnedClient(w, r)
	if client == nil {
		return
	}

	if err := s.store.DeleteAgencyClient(r.Context(), client.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
