package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"marquee/models"
	"marquee/services/channels"
	"marquee/services/metadata"
)

type channelsService interface {
	Folders() []channels.Folder
	Trailers(category string) []models.TrailerInfo
}

var _ channelsService = (*channels.Service)(nil)

type ChannelsHandler struct {
	Service channelsService
}

func NewChannelsHandler(service channelsService) *ChannelsHandler {
	return &ChannelsHandler{Service: service}
}

// List returns the channel category folders.
func (h *ChannelsHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Folders())
}

// Trailers returns one category's trailer listing.
func (h *ChannelsHandler) Trailers(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	if !validCategory(category) {
		http.Error(w, "unknown channel category", http.StatusNotFound)
		return
	}

	trailers := h.Service.Trailers(category)
	if trailers == nil {
		trailers = []models.TrailerInfo{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trailers)
}

func validCategory(category string) bool {
	for _, known := range metadata.Categories {
		if category == known {
			return true
		}
	}
	return false
}
