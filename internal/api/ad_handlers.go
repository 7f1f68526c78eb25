package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"
)

// ========== Ad handlers (agency tier) ==========

// HandleListAds lists the agency's ads
func (s *RESTServer) HandleListAds(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	ads, err := s.store.ListAds(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"ads":   ads,
		"total": len(ads),
	})
}

// HandleUploadAd accepts a multipart upload with a title and a video file
func (s *RESTServer) HandleUploadAd(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	if err := r.ParseMultipartForm(s.config.Media.MaxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "video/") {
		s.respondError(w, http.StatusBadRequest, "file must be a video")
		return
	}

	fileURL, err := s.media.Save(file, header.Filename)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to store video")
		return
	}

	ad := &models.Ad{
		AgencyID: claims.AccountID,
		Title:    title,
		FileURL:  fileURL,
	}

	if err := s.store.CreateAd(r.Context(), ad); err != nil {
		s.media.Delete(fileURL)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, ad)
}

// getOwnedAd loads an ad and checks it belongs to the caller
func (s *RESTServer) getOwnedAd(w http.ResponseWriter, r *http.Request) *models.Ad {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid ad id")
		return nil
	}

	ad, err := s.store.GetAd(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "ad not found")
			return nil
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil
	}

	if ad.AgencyID != claims.AccountID {
		s.respondError(w, http.StatusNotFound, "ad not found")
		return nil
	}
	return ad
}

// HandleGetAd gets a single ad
func (s *RESTServer) HandleGetAd(w http.ResponseWriter, r *http.Request) {
	ad := s.getOwnedAd(w, r)
	if ad == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, ad)
}

// HandleUpdateAd renames an ad and optionally replaces its video.
// Multipart requests may carry a new file; JSON requests update the
// title only.
func (s *RESTServer) HandleUpdateAd(w http.ResponseWriter, r *http.Request) {
	ad := s.getOwnedAd(w, r)
	if ad == nil {
		return
	}

	oldFileURL := ""

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.config.Media.MaxUploadSize); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		title := strings.TrimSpace(r.FormValue("title"))
		if title == "" {
			s.respondError(w, http.StatusBadRequest, "title is required")
			return
		}
		ad.Title = title

		if file, header, err := r.FormFile("video"); err == nil {
			defer file.Close()
			if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "video/") {
				s.respondError(w, http.StatusBadRequest, "file must be a video")
				return
			}
			fileURL, err := s.media.Save(file, header.Filename)
			if err != nil {
				s.respondError(w, http.StatusInternalServerError, "failed to store video")
				return
			}
			oldFileURL = ad.FileURL
			ad.FileURL = fileURL
		}
	} else {
		var req struct {
			Title string `json:"title" validate:"required,min=1,max=200"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.validator.Validate(req); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		ad.Title = strings.TrimSpace(req.Title)
	}

	if err := s.store.UpdateAd(r.Context(), ad); err != nil {
		if ad.FileURL != oldFileURL && oldFileURL != "" {
			s.media.Delete(ad.FileURL)
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if oldFileURL != "" {
		s.media.Delete(oldFileURL)
	}

	s.respondJSON(w, http.StatusOK, ad)
}

// HandleDeleteAd deletes an ad and its stored video
func (s *RESTServer) HandleDeleteAd(w http.ResponseWriter, r *http.Request) {
	ad := s.getOwnedAd(w, r)
	if ad == nil {
		return
	}

	if err := s.store.DeleteAd(r.Context(), ad.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.media.Delete(ad.FileURL)

	w.WriteHeader(http.StatusNoContent)
}
