package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"marquee/models"
	"marquee/services/settings"
)

type settingsService interface {
	Current() models.Settings
	Update(cfg models.Settings) error
}

var _ settingsService = (*settings.Service)(nil)

type SettingsHandler struct {
	Service settingsService
}

func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{Service: service}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Current())
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var cfg models.Settings
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.Update(cfg); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, settings.ErrInvalidRating) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Current())
}
