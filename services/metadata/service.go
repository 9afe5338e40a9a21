// Package metadata sources movie lists and trailer metadata from TMDB and
// holds the per-trailer cache the selection core scores against.
package metadata

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"marquee/models"
)

// Service owns the TMDB client and the trailer metadata cache. It is the
// cache bridge: the selection core reads trailer facts through Trailer and
// never sees refresh traffic.
type Service struct {
	mu       sync.RWMutex
	tmdb     *tmdbClient
	cache    *diskCache
	trailers map[string]models.TrailerInfo
	ttlHours int
	cacheDir string
}

const trailerIndexCacheKey = "marquee:trailer-index"

func NewService(tmdbAPIKey, language, cacheDir string, ttlHours int) *Service {
	metadataDir := filepath.Join(cacheDir, "metadata")
	svc := &Service{
		tmdb:     newTMDBClient(tmdbAPIKey, language, &http.Client{}, newDiskCache(metadataDir, ttlHours)),
		cache:    newDiskCache(metadataDir, ttlHours),
		trailers: make(map[string]models.TrailerInfo),
		ttlHours: ttlHours,
		cacheDir: metadataDir,
	}
	svc.loadIndex()
	return svc
}

// UpdateAPIKey swaps the TMDB key and clears cached responses so fresh
// data is fetched.
func (s *Service) UpdateAPIKey(tmdbAPIKey, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tmdb = newTMDBClient(tmdbAPIKey, language, &http.Client{}, newDiskCache(s.cacheDir, s.ttlHours))
	if err := s.cache.clear(); err != nil {
		log.Printf("[metadata] warning: failed to clear cache: %v", err)
	}
	s.trailers = make(map[string]models.TrailerInfo)
}

// Trailer returns the cached metadata for a trailer identifier. Absence
// is a normal outcome; callers score such trailers neutrally.
func (s *Service) Trailer(id string) (*models.TrailerInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.trailers[id]
	if !ok {
		return nil, false
	}
	return &info, true
}

// TrailerIDs returns the current candidate pool in stable order.
func (s *Service) TrailerIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.trailers))
	for id := range s.trailers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Category returns the cached trailers belonging to one channel category,
// sorted by movie title.
func (s *Service) Category(category string) []models.TrailerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TrailerInfo
	for _, info := range s.trailers {
		if info.Category == category {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieTitle < out[j].MovieTitle })
	return out
}

// Refresh walks the channel categories and rebuilds the trailer metadata
// cache, resolving each movie's trailer with a bounded worker pool.
// Individual movie failures are logged and skipped.
func (s *Service) Refresh(ctx context.Context, perCategory int) error {
	if perCategory <= 0 {
		perCategory = 30
	}
	s.mu.RLock()
	client := s.tmdb
	s.mu.RUnlock()

	fresh := make(map[string]models.TrailerInfo)
	var freshMu sync.Mutex

	for _, category := range Categories {
		movies, err := s.listCategory(ctx, client, category, perCategory)
		if err != nil {
			return fmt.Errorf("list %s movies: %w", category, err)
		}

		p := pool.New().WithMaxGoroutines(4).WithContext(ctx)
		for _, movie := range movies {
			movie := movie
			category := category
			p.Go(func(ctx context.Context) error {
				videos, err := client.MovieTrailers(ctx, movie.ID)
				if err != nil {
					log.Printf("[metadata] trailers for %q unavailable: %v", movie.Title, err)
					return nil
				}
				if len(videos) == 0 {
					return nil
				}
				video := videos[0]
				info := models.TrailerInfo{
					ID:         fmt.Sprintf("tmdb-%d-%s", movie.ID, video.Key),
					MovieID:    movie.ID,
					MovieTitle: movie.Title,
					VideoKey:   video.Key,
					Year:       parseReleaseYear(movie.ReleaseDate),
					GenreIDs:   movie.GenreIDs,
					Category:   category,
				}
				freshMu.Lock()
				fresh[info.ID] = info
				freshMu.Unlock()
				return nil
			})
		}
		if err := p.Wait(); err != nil {
			return fmt.Errorf("resolve %s trailers: %w", category, err)
		}
	}

	s.mu.Lock()
	s.trailers = fresh
	s.mu.Unlock()
	s.saveIndex()

	log.Printf("[metadata] refreshed trailer cache: %d trailers", len(fresh))
	return nil
}

func (s *Service) listCategory(ctx context.Context, client *tmdbClient, category string, limit int) ([]tmdbMovie, error) {
	var movies []tmdbMovie
	for page := 1; len(movies) < limit; page++ {
		list, err := client.Movies(ctx, category, page)
		if err != nil {
			return nil, err
		}
		movies = append(movies, list.Results...)
		if page >= list.TotalPages || len(list.Results) == 0 {
			break
		}
	}
	if len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}

// loadIndex restores the trailer index from disk so a restart serves
// intros before the first refresh completes.
func (s *Service) loadIndex() {
	var stored []models.TrailerInfo
	if !s.cache.read(trailerIndexCacheKey, &stored) {
		return
	}
	for _, info := range stored {
		s.trailers[info.ID] = info
	}
	if len(stored) > 0 {
		log.Printf("[metadata] restored %d trailers from cache", len(stored))
	}
}

func (s *Service) saveIndex() {
	s.mu.RLock()
	stored := make([]models.TrailerInfo, 0, len(s.trailers))
	for _, info := range s.trailers {
		stored = append(stored, info)
	}
	s.mu.RUnlock()
	if err := s.cache.write(trailerIndexCacheKey, stored); err != nil {
		log.Printf("[metadata] warning: failed to persist trailer index: %v", err)
	}
}
