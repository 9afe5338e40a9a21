package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"marquee/models"
	"marquee/services/metadata"
	"marquee/services/prequeue"
)

type prequeueManager interface {
	Prequeue(videoURL string) string
	Status(id string) (*prequeue.Item, bool)
	Serve(id string, w http.ResponseWriter, r *http.Request) error
}

var _ prequeueManager = (*prequeue.Manager)(nil)

type trailerMetadata interface {
	Trailer(id string) (*models.TrailerInfo, bool)
}

var _ trailerMetadata = (*metadata.Service)(nil)

type TrailersHandler struct {
	Prequeue prequeueManager
	Metadata trailerMetadata
}

func NewTrailersHandler(pq prequeueManager, meta trailerMetadata) *TrailersHandler {
	return &TrailersHandler{Prequeue: pq, Metadata: meta}
}

// PrequeueResponse reports a download's identity and state.
type PrequeueResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
}

// Start begins downloading the trailer behind a cached trailer ID.
func (h *TrailersHandler) Start(w http.ResponseWriter, r *http.Request) {
	trailerID := mux.Vars(r)["trailerID"]

	info, ok := h.Metadata.Trailer(trailerID)
	if !ok {
		http.Error(w, "trailer not found", http.StatusNotFound)
		return
	}

	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", info.VideoKey)
	id := h.Prequeue.Prequeue(videoURL)

	// Prequeue reuses an existing download for the same URL, so the entry
	// may already be past pending; report its current state.
	resp := PrequeueResponse{ID: id, Status: string(prequeue.StatusPending)}
	if item, ok := h.Prequeue.Status(id); ok {
		resp.Status = string(item.Status)
		resp.Error = item.Error
		resp.FileSize = item.FileSize
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Status reports the state of a prequeued download.
func (h *TrailersHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	item, ok := h.Prequeue.Status(id)
	if !ok {
		http.Error(w, "prequeue not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PrequeueResponse{
		ID:       item.ID,
		Status:   string(item.Status),
		Error:    item.Error,
		FileSize: item.FileSize,
	})
}

// Stream serves a downloaded trailer file with range support.
func (h *TrailersHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Prequeue.Serve(id, w, r); err != nil {
		log.Printf("[trailers] serve error: %v", err)
		// Only write the error if nothing has been streamed yet.
		if w.Header().Get("Content-Type") == "" {
			http.Error(w, err.Error(), http.StatusNotFound)
		}
	}
}
