package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"marquee/models"
)

// ItemRepository persists library items and per-user played state.
type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// UpsertItem inserts or replaces an item. An empty ID gets a fresh UUID;
// the stored item is returned either way.
func (r *ItemRepository) UpsertItem(item models.Item) (models.Item, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}
	var dateCreated any
	if !item.DateCreated.IsZero() {
		dateCreated = item.DateCreated.UTC()
	}
	_, err := r.db.Exec(`
		INSERT INTO items (id, parent_id, name, media_type, production_year, official_rating, genres, tags, studios, date_created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_id = excluded.parent_id,
			name = excluded.name,
			media_type = excluded.media_type,
			production_year = excluded.production_year,
			official_rating = excluded.official_rating,
			genres = excluded.genres,
			tags = excluded.tags,
			studios = excluded.studios,
			date_created = excluded.date_created`,
		item.ID, item.ParentID, item.Name, string(item.MediaType), item.ProductionYear,
		item.OfficialRating, joinList(item.Genres), joinList(item.Tags), joinList(item.Studios), dateCreated)
	if err != nil {
		return models.Item{}, fmt.Errorf("upsert item: %w", err)
	}
	return item, nil
}

// GetItem returns the item, or nil when the id does not resolve.
func (r *ItemRepository) GetItem(id string) (*models.Item, error) {
	row := r.db.QueryRow(`
		SELECT id, parent_id, name, media_type, production_year, official_rating, genres, tags, studios, date_created
		FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item and its played records. Returns whether a
// row existed.
func (r *ItemRepository) DeleteItem(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	if _, err := r.db.Exec(`DELETE FROM played_items WHERE item_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete played state: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// VideosUnder returns every playable (non-folder) descendant of the given
// parent, recursively.
func (r *ItemRepository) VideosUnder(parentID string) ([]models.Item, error) {
	rows, err := r.db.Query(`
		WITH RECURSIVE descendants(id) AS (
			SELECT id FROM items WHERE parent_id = ?
			UNION ALL
			SELECT i.id FROM items i JOIN descendants d ON i.parent_id = d.id
		)
		SELECT i.id, i.parent_id, i.name, i.media_type, i.production_year, i.official_rating, i.genres, i.tags, i.studios, i.date_created
		FROM items i JOIN descendants d ON i.id = d.id
		WHERE i.media_type != ?
		ORDER BY i.name`, parentID, string(models.MediaTypeFolder))
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SetPlayed records or clears a user's played state for an item.
func (r *ItemRepository) SetPlayed(userID, itemID string, played bool) error {
	if played {
		_, err := r.db.Exec(`
			INSERT INTO played_items (user_id, item_id) VALUES (?, ?)
			ON CONFLICT(user_id, item_id) DO NOTHING`, userID, itemID)
		return err
	}
	_, err := r.db.Exec(`DELETE FROM played_items WHERE user_id = ? AND item_id = ?`, userID, itemID)
	return err
}

// IsPlayed reports whether the user has played the item.
func (r *ItemRepository) IsPlayed(userID, itemID string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM played_items WHERE user_id = ? AND item_id = ?`, userID, itemID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query played state: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	var mediaType, genres, tags, studios string
	var dateCreated sql.NullTime
	err := row.Scan(&item.ID, &item.ParentID, &item.Name, &mediaType, &item.ProductionYear,
		&item.OfficialRating, &genres, &tags, &studios, &dateCreated)
	if err != nil {
		return nil, err
	}
	item.MediaType = models.MediaType(mediaType)
	item.Genres = splitList(genres)
	item.Tags = splitList(tags)
	item.Studios = splitList(studios)
	if dateCreated.Valid {
		item.DateCreated = dateCreated.Time
	}
	return &item, nil
}

// Lists are stored as pipe-separated text; none of the fields may contain
// the separator.
func joinList(values []string) string {
	return strings.Join(values, "|")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}
