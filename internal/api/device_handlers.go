package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
	"github.com/signage-server/signage-server-pro/pkg/crypto"
)

// ========== Device handlers (master tier) ==========

// HandleListDevices lists the master's device fleet
func (s *RESTServer) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	devices, err := s.store.ListDevices(r.Context(), storage.DeviceFilters{
		MasterID: &claims.AccountID,
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

// HandleCreateDevice registers a new device and issues its key pair
func (s *RESTServer) HandleCreateDevice(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	var req struct {
		Name      string  `json:"name" validate:"required,min=3,max=100"`
		Model     string  `json:"model"`
		Size      string  `json:"size"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		AgencyID  string  `json:"agencyId" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	agencyID, err := uuid.Parse(req.AgencyID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid agency id")
		return
	}

	agency, err := s.store.GetAgency(r.Context(), agencyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "agency not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if agency.MasterID != claims.AccountID {
		s.respondError(w, http.StatusNotFound, "agency not found")
		return
	}

	publicKey, err := crypto.GenerateHexKey(16)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to generate device keys")
		return
	}
	secretKey, err := crypto.GenerateHexKey(32)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to generate device keys")
		return
	}

	deviceUUID := uuid.NewString()
	device := &models.Device{
		UUID:        deviceUUID,
		Name:        req.Name,
		Model:       req.Model,
		Size:        req.Size,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		APIEndpoint: "/api/v1/player/" + deviceUUID,
		PublicKey:   publicKey,
		SecretKey:   secretKey,
		Status:      models.DeviceInactive,
		MasterID:    claims.AccountID,
		AgencyID:    agency.ID,
	}

	if err := s.store.CreateDevice(r.Context(), device); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The secret key is only revealed once, at creation time.
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"device":    device,
		"secretKey": device.SecretKey,
	})
}

// getOwnedDevice loads a device and checks it belongs to the caller's fleet
func (s *RESTServer) getOwnedDevice(w http.ResponseWriter, r *http.Request) *models.Device {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return nil
	}

	device, err := s.store.GetDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "device not found")
			return nil
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil
	}

	if device.MasterID != claims.AccountID {
		s.respondError(w, http.StatusNotFound, "device not found")
		return nil
	}
	return device
}

// HandleGetDevice gets a single device
func (s *RESTServer) HandleGetDevice(w http.ResponseWriter, r *http.Request) {
	device := s.getOwnedDevice(w, r)
	if device == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, device)
}

// HandleUpdateDevice updates a device's metadata and status
func (s *RESTServer) HandleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	device := s.getOwnedDevice(w, r)
	if device == nil {
		return
	}

	var req struct {
		Name      string  `json:"name" validate:"required,min=3,max=100"`
		Model     string  `json:"model"`
		Size      string  `json:"size"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Status    string  `json:"status" validate:"oneof=ACTIVE INACTIVE MAINTENANCE"`
		AgencyID  string  `json:"agencyId" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	agencyID, err := uuid.Parse(req.AgencyID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid agency id")
		return
	}

	claims := s.claims(r)
	agency, err := s.store.GetAgency(r.Context(), agencyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "agency not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if agency.MasterID != claims.AccountID {
		s.respondError(w, http.StatusNotFound, "agency not found")
		return
	}

	// Moving a device between agencies drops its client link.
	if device.AgencyID != agency.ID {
		device.ClientID = nil
	}

	device.Name = req.Name
	device.Model = req.Model
	device.Size = req.Size
	device.Latitude = req.Latitude
	device.Longitude = req.Longitude
	device.Status = models.DeviceStatus(req.Status)
	device.AgencyID = agency.ID

	if err := s.store.UpdateDevice(r.Context(), device); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, device)
}

// HandleDeleteDevice removes a device from the fleet
func (s *RESTServer) HandleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	device := s.getOwnedDevice(w, r)
	if device == nil {
		return
	}

	if err := s.store.DeleteDevice(r.Context(), device.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ========== Agency device handlers (agency tier) ==========

// HandleListAgencyDevices lists the devices assigned to the agency
func (s *RESTServer) HandleListAgencyDevices(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	devices, err := s.store.ListDevices(r.Context(), storage.DeviceFilters{
		AgencyID: &claims.AccountID,
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

// HandleAssignDeviceClient links or unlinks one of the agency's devices
// to a client. A null clientId clears the link.
func (s *RESTServer) HandleAssignDeviceClient(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	var req struct {
		ClientID *string `json:"clientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	device, err := s.store.GetDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "device not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if device.AgencyID != claims.AccountID {
		s.respondError(w, http.StatusNotFound, "device not found")
		return
	}

	if req.ClientID == nil {
		device.ClientID = nil
	} else {
		clientID, err := uuid.Parse(*req.ClientID)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid client id")
			return
		}

		client, err := s.store.GetAgencyClient(r.Context(), clientID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.respondError(w, http.StatusNotFound, "client not found")
				return
			}
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if client.AgencyID != claims.AccountID {
			s.respondError(w, http.StatusNotFound, "client not found")
			return
		}
		device.ClientID = &client.ID
	}

	if err := s.store.UpdateDevice(r.Context(), device); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, device)
}
