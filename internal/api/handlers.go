package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/signage-server/signage-server-pro/internal/auth"
	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
	"github.com/signage-server/signage-server-pro/pkg/crypto"
)

// ========== Auth handlers ==========

// HandleLogin handles login for all three account tiers
func (s *RESTServer) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal, err := s.authn.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := s.auth.GenerateToken(principal.ID, principal.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.config.JWT.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"role":       principal.Role,
		"id":         principal.ID,
		"name":       principal.Name,
		"email":      principal.Email,
		"expires_in": int(s.config.JWT.AccessTokenTTL.Seconds()),
	})
}

// HandleLogout clears the session cookie
func (s *RESTServer) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleRegisterMaster registers a new platform master account
func (s *RESTServer) HandleRegisterMaster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name" validate:"required,min=3,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
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

	master := &models.Master{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.store.CreateMaster(r.Context(), master); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.respondError(w, http.StatusConflict, "account with this email already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, master)
}

// ========== Profile handlers ==========

// HandleGetProfile returns the logged-in account
func (s *RESTServer) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)
	ctx := r.Context()

	var account interface{}
	var err error
	switch claims.Role {
	case auth.RoleMaster:
		account, err = s.store.GetMaster(ctx, claims.AccountID)
	case auth.RoleAgency:
		account, err = s.store.GetAgency(ctx, claims.AccountID)
	case auth.RoleAgencyClient:
		account, err = s.store.GetAgencyClient(ctx, claims.AccountID)
	}

	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "account not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"role":    claims.Role,
		"account": account,
	})
}

// HandleUpdateProfile updates the logged-in account's own fields
func (s *RESTServer) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	switch claims.Role {
	case auth.RoleMaster:
		s.updateMasterProfile(w, r, claims.AccountID)
	case auth.RoleAgency:
		s.updateAgencyProfile(w, r, claims.AccountID)
	case auth.RoleAgencyClient:
		s.updateClientProfile(w, r, claims.AccountID)
	}
}

func (s *RESTServer) updateMasterProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req struct {
		Name string `json:"name" validate:"required,min=3,max=100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	master, err := s.store.GetMaster(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	master.Name = req.Name

	if err := s.store.UpdateMaster(r.Context(), master); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, master)
}

func (s *RESTServer) updateAgencyProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
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

	agency, err := s.store.GetAgency(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
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

func (s *RESTServer) updateClientProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req struct {
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

	client, err := s.store.GetAgencyClient(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

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

// ========== Helper methods ==========

// HandleHealth health check
func (s *RESTServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// HandleRoot root handler
func (s *RESTServer) HandleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": s.config.Server.Name,
		"version": s.config.Server.Version,
		"health":  "/api/v1/health",
	})
}

// respondJSON responds with JSON
func (s *RESTServer) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError responds with error
func (s *RESTServer) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// urlID parses the {id} URL parameter as a UUID
func urlID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}
