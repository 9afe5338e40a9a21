package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"marquee/models"
	"marquee/services/library"
)

type libraryAdmin interface {
	Item(id string) (*models.Item, error)
	Create(item models.Item) (models.Item, error)
	Delete(id string) (bool, error)
	MarkPlayed(userID, itemID string, played bool) error
}

var _ libraryAdmin = (*library.Service)(nil)

type LibraryHandler struct {
	Service libraryAdmin
}

func NewLibraryHandler(service libraryAdmin) *LibraryHandler {
	return &LibraryHandler{Service: service}
}

// Get returns one item.
func (h *LibraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, err := h.Service.Item(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// Create stores a new item (or updates one when the id is supplied).
func (h *LibraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item models.Item
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&item); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	stored, err := h.Service.Create(item)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(stored)
}

// Delete removes an item and its played records.
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	existed, err := h.Service.Delete(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !existed {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkPlayed sets or clears a user's played flag for an item.
// Query params: userId (required), played (defaults to true).
func (h *LibraryHandler) MarkPlayed(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		http.Error(w, "userId parameter required", http.StatusBadRequest)
		return
	}
	played := r.URL.Query().Get("played") != "false"

	if err := h.Service.MarkPlayed(userID, id, played); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"itemId": id, "userId": userID, "played": played})
}
