// Package library adapts the item store to the capability surface the
// selection core consumes: item lookup, flat video listings, played state
// and the top-level library walk.
package library

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"marquee/internal/database"
	"marquee/models"
)

var ErrLibraryNotFound = errors.New("library not found")

// Service wraps the item repository. All methods are read paths except
// the explicit mutations used by the library handler.
type Service struct {
	items *database.ItemRepository
}

func NewService(items *database.ItemRepository) *Service {
	return &Service{items: items}
}

// Item returns the item, or nil when the id does not resolve.
func (s *Service) Item(id string) (*models.Item, error) {
	return s.items.GetItem(id)
}

// VideosInLibrary returns the flat recursive video listing of a library.
// It fails when the library id does not resolve to an existing item.
func (s *Service) VideosInLibrary(libraryID string) ([]models.Item, error) {
	lib, err := s.items.GetItem(libraryID)
	if err != nil {
		return nil, err
	}
	if lib == nil {
		return nil, fmt.Errorf("%w: %s", ErrLibraryNotFound, libraryID)
	}
	return s.items.VideosUnder(libraryID)
}

// IsPlayed reports whether the user played the item. Lookup failures read
// as "not played".
func (s *Service) IsPlayed(itemID, userID string) bool {
	if strings.TrimSpace(userID) == "" {
		return false
	}
	played, err := s.items.IsPlayed(userID, itemID)
	if err != nil {
		log.Printf("[library] played lookup failed for %s: %v", itemID, err)
		return false
	}
	return played
}

// DateAdded returns when the item entered the library. Lookup failures
// and unknown items read as "no date".
func (s *Service) DateAdded(itemID string) (time.Time, bool) {
	item, err := s.items.GetItem(itemID)
	if err != nil {
		log.Printf("[library] date-added lookup failed for %s: %v", itemID, err)
		return time.Time{}, false
	}
	if item == nil || item.DateCreated.IsZero() {
		return time.Time{}, false
	}
	return item.DateCreated, true
}

// TopLevelLibraryID walks the item's ancestor chain and returns the node
// sitting directly under the aggregate root (items with no parent are
// roots themselves). Broken chains stop at the last resolvable node.
func (s *Service) TopLevelLibraryID(itemID string) string {
	cur, err := s.items.GetItem(itemID)
	if err != nil || cur == nil {
		return ""
	}
	for {
		if cur.ParentID == "" {
			return cur.ID
		}
		parent, err := s.items.GetItem(cur.ParentID)
		if err != nil || parent == nil {
			return cur.ID
		}
		if parent.ParentID == "" {
			return parent.ID
		}
		cur = parent
	}
}

// Create stores a new or updated item.
func (s *Service) Create(item models.Item) (models.Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return models.Item{}, errors.New("item name is required")
	}
	if item.MediaType == "" {
		item.MediaType = models.MediaTypeVideo
	}
	if item.DateCreated.IsZero() {
		item.DateCreated = time.Now().UTC()
	}
	return s.items.UpsertItem(item)
}

// Delete removes an item; reports whether it existed.
func (s *Service) Delete(id string) (bool, error) {
	return s.items.DeleteItem(id)
}

// MarkPlayed sets or clears the user's played flag.
func (s *Service) MarkPlayed(userID, itemID string, played bool) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}
	return s.items.SetPlayed(userID, itemID, played)
}
