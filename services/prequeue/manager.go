// Package prequeue resolves a trailer's video key to a locally downloaded
// file and serves it with range support. Files are temporary: unused
// downloads are cleaned up by access age.
package prequeue

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// Status is the lifecycle state of a prequeued trailer download.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusReady       Status = "ready"
	StatusFailed      Status = "failed"
)

// Item tracks one trailer download.
type Item struct {
	ID             string     `json:"id"`
	VideoURL       string     `json:"videoUrl"`
	Status         Status     `json:"status"`
	FilePath       string     `json:"-"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	ReadyAt        *time.Time `json:"readyAt,omitempty"`
	LastAccessedAt *time.Time `json:"-"`
	FileSize       int64      `json:"fileSize,omitempty"`
}

// DownloadFunc fetches a video URL into outPath. The default runs yt-dlp
// with an ffmpeg merge; tests inject a fake that writes through the
// manager's filesystem.
type DownloadFunc func(ctx context.Context, videoURL, outPath string) error

// Manager downloads trailers into a temp directory and serves them.
type Manager struct {
	fs       afero.Fs
	dir      string
	download DownloadFunc

	mu    sync.RWMutex
	items map[string]*Item

	cleanupOnce sync.Once
	stopC       chan struct{}
}

// Cleanup timing.
const (
	cleanupInterval = 30 * time.Second
	// Ready but never served.
	unusedTimeout = 5 * time.Minute
	// After the last byte was served.
	postAccessTimeout = 2 * time.Minute
	// Stale pending/failed entries.
	staleTimeout = 30 * time.Minute
)

// NewManager creates a prequeue manager storing downloads under dir.
func NewManager(fs afero.Fs, dir string, download DownloadFunc) (*Manager, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trailer temp dir: %w", err)
	}
	if download == nil {
		download = ytDlpDownload
	}
	return &Manager{
		fs:       fs,
		dir:      dir,
		download: download,
		items:    make(map[string]*Item),
		stopC:    make(chan struct{}),
	}, nil
}

// idFor derives a stable ID from the video URL so repeated prequeues of
// the same trailer share one download.
func idFor(videoURL string) string {
	sum := sha1.Sum([]byte(videoURL))
	return hex.EncodeToString(sum[:])
}

// Prequeue starts downloading in the background and returns the prequeue
// ID immediately. A failed entry is retried; anything else is reused.
func (m *Manager) Prequeue(videoURL string) string {
	id := idFor(videoURL)

	m.mu.Lock()
	if existing, ok := m.items[id]; ok && existing.Status != StatusFailed {
		m.mu.Unlock()
		return id
	}
	m.items[id] = &Item{
		ID:        id,
		VideoURL:  videoURL,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	m.mu.Unlock()

	m.cleanupOnce.Do(func() { go m.cleanupLoop() })
	go m.run(id, videoURL)

	log.Printf("[prequeue] queued %s for %s", id, videoURL)
	return id
}

// Status returns a copy of the item's current state.
func (m *Manager) Status(id string) (*Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, false
	}
	copied := *item
	return &copied, true
}

// Serve streams the downloaded file with range support.
func (m *Manager) Serve(id string, w http.ResponseWriter, r *http.Request) error {
	// Copy the fields we need while holding the lock; the download
	// goroutine mutates the item concurrently.
	m.mu.Lock()
	item, ok := m.items[id]
	var status Status
	var filePath string
	if ok {
		now := time.Now()
		item.LastAccessedAt = &now
		status = item.Status
		filePath = item.FilePath
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("trailer not found: %s", id)
	}
	if status != StatusReady {
		return fmt.Errorf("trailer not ready (status: %s)", status)
	}

	file, err := m.fs.Open(filePath)
	if err != nil {
		return fmt.Errorf("open trailer file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat trailer file: %w", err)
	}

	w.Header().Set("Content-Type", sniffContentType(file))
	http.ServeContent(w, r, filePath, stat.ModTime(), file)
	return nil
}

// sniffContentType detects the served type from the file head, falling
// back to mp4, and rewinds the reader.
func sniffContentType(file afero.File) string {
	contentType := "video/mp4"
	if mt, err := mimetype.DetectReader(file); err == nil {
		contentType = mt.String()
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "video/mp4"
	}
	return contentType
}

func (m *Manager) run(id, videoURL string) {
	m.setStatus(id, StatusDownloading, "")
	log.Printf("[prequeue] downloading %s", id)

	outPath := filepath.Join(m.dir, id+".mp4")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := m.download(ctx, videoURL, outPath); err != nil {
		log.Printf("[prequeue] download failed for %s: %v", id, err)
		m.setStatus(id, StatusFailed, err.Error())
		return
	}

	stat, err := m.fs.Stat(outPath)
	if err != nil {
		m.setStatus(id, StatusFailed, "output file not found")
		return
	}

	m.mu.Lock()
	if item, ok := m.items[id]; ok {
		now := time.Now()
		item.Status = StatusReady
		item.FilePath = outPath
		item.ReadyAt = &now
		item.FileSize = stat.Size()
	}
	m.mu.Unlock()
	log.Printf("[prequeue] ready %s (%d bytes)", id, stat.Size())
}

func (m *Manager) setStatus(id string, status Status, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		item.Status = status
		item.Error = errMsg
	}
}

// ytDlpDownload fetches the best <=1080p stream merged to mp4.
func ytDlpDownload(ctx context.Context, videoURL, outPath string) error {
	path, err := exec.LookPath("yt-dlp")
	if err != nil {
		return fmt.Errorf("yt-dlp not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, path,
		"-f", "bestvideo[height<=1080]+bestaudio/best",
		"--merge-output-format", "mp4",
		"--no-warnings",
		"--no-playlist",
		"-o", outPath,
		videoURL,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("download failed: %s", msg)
	}
	return nil
}

// Stop halts the cleanup loop.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.stopC:
	default:
		close(m.stopC)
	}
}

func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.cleanup(time.Now())
		case <-m.stopC:
			return
		}
	}
}

// cleanup removes trailers by access pattern: served files shortly after
// their last access, ready-but-unserved files after a grace period, and
// stale pending/failed entries.
func (m *Manager) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, item := range m.items {
		remove := false
		switch item.Status {
		case StatusReady:
			if item.LastAccessedAt != nil {
				remove = now.Sub(*item.LastAccessedAt) > postAccessTimeout
			} else if item.ReadyAt != nil {
				remove = now.Sub(*item.ReadyAt) > unusedTimeout
			}
		default:
			remove = now.Sub(item.CreatedAt) > staleTimeout
		}
		if !remove {
			continue
		}
		if item.FilePath != "" {
			if err := m.fs.Remove(item.FilePath); err != nil {
				log.Printf("[prequeue] failed to delete %s: %v", item.FilePath, err)
			}
		}
		delete(m.items, id)
		log.Printf("[prequeue] cleaned up %s", id)
	}
}
