package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/signage-server/signage-server-pro/internal/player"
)

// ========== Player handlers (device channel) ==========
//
// These endpoints are unauthenticated at the session level; each request
// carries the device's secret key instead.

type playerKeyRequest struct {
	Key string `json:"key"`
}

// HandlePlayerConnect marks a device online and returns its play state
func (s *RESTServer) HandlePlayerConnect(w http.ResponseWriter, r *http.Request) {
	var req playerKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	device, state, err := s.player.Connect(r.Context(), req.Key)
	if err != nil {
		s.respondPlayerError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "device connected",
		"deviceId": device.UUID,
		"name":     device.Name,
		"videoUrl": state.VideoURL,
		"title":    state.Title,
	})
}

// HandlePlayerDisconnect marks a device offline
func (s *RESTServer) HandlePlayerDisconnect(w http.ResponseWriter, r *http.Request) {
	var req playerKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.player.Disconnect(r.Context(), req.Key); err != nil {
		s.respondPlayerError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "device disconnected"})
}

// HandlePlayerVideo returns what the device should be playing right now
func (s *RESTServer) HandlePlayerVideo(w http.ResponseWriter, r *http.Request) {
	var req playerKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := s.player.Poll(r.Context(), req.Key, time.Now())
	if err != nil {
		s.respondPlayerError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, state)
}

func (s *RESTServer) respondPlayerError(w http.ResponseWriter, err error) {
	if errors.Is(err, player.ErrInvalidKey) {
		s.respondError(w, http.StatusNotFound, "Invalid device key")
		return
	}
	s.respondError(w, http.StatusInternalServerError, err.Error())
}
