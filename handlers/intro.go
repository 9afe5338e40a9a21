package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"marquee/models"
	"marquee/services/intro"
	"marquee/services/library"
	"marquee/services/metadata"
)

type introService interface {
	ComputeIntroSequence(item *models.Item, user *models.User, candidateIDs []string, count int) []string
}

var _ introService = (*intro.Service)(nil)

type libraryService interface {
	Item(id string) (*models.Item, error)
}

var _ libraryService = (*library.Service)(nil)

type trailerPool interface {
	TrailerIDs() []string
}

var _ trailerPool = (*metadata.Service)(nil)

type IntroHandler struct {
	Intros  introService
	Library libraryService
	Pool    trailerPool
}

func NewIntroHandler(intros introService, lib libraryService, pool trailerPool) *IntroHandler {
	return &IntroHandler{Intros: intros, Library: lib, Pool: pool}
}

// IntroResponse is the ordered intro sequence for one feature.
type IntroResponse struct {
	ItemID   string   `json:"itemId"`
	Sequence []string `json:"sequence"`
}

// Get computes the intro sequence for the item about to play.
// Query params: userId (optional), count (optional trailer count override).
func (h *IntroHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemID"]

	item, err := h.Library.Item(itemID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	count := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "count must be an integer", http.StatusBadRequest)
			return
		}
	}

	user := &models.User{ID: strings.TrimSpace(r.URL.Query().Get("userId"))}
	sequence := h.Intros.ComputeIntroSequence(item, user, h.Pool.TrailerIDs(), count)
	if sequence == nil {
		sequence = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(IntroResponse{ItemID: item.ID, Sequence: sequence})
}
