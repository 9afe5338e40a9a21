package prequeue

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func writeFileDownload(fs afero.Fs, content []byte) DownloadFunc {
	return func(_ context.Context, _ string, outPath string) error {
		return afero.WriteFile(fs, outPath, content, 0o644)
	}
}

func failingDownload(_ context.Context, _ string, _ string) error {
	return errors.New("boom")
}

func waitForStatus(t *testing.T, m *Manager, id string, want Status) *Item {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if item, ok := m.Status(id); ok && item.Status == want {
			return item
		}
		time.Sleep(5 * time.Millisecond)
	}
	item, _ := m.Status(id)
	t.Fatalf("timed out waiting for status %s, current: %+v", want, item)
	return nil
}

func TestPrequeue_DownloadLifecycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	m, err := NewManager(fs, "/trailers", writeFileDownload(fs, []byte("fake mp4 payload")))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Stop()

	id := m.Prequeue("https://www.youtube.com/watch?v=abc")
	item := waitForStatus(t, m, id, StatusReady)
	if item.FileSize != int64(len("fake mp4 payload")) {
		t.Fatalf("unexpected file size %d", item.FileSize)
	}
}

func TestPrequeue_SameURLSharesDownload(t *testing.T) {
	fs := afero.NewMemMapFs()
	m, err := NewManager(fs, "/trailers", writeFileDownload(fs, []byte("x")))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	a := m.Prequeue("https://www.youtube.com/watch?v=abc")
	b := m.Prequeue("https://www.youtube.com/watch?v=abc")
	c := m.Prequeue("https://www.youtube.com/watch?v=other")
	if a != b {
		t.Fatalf("same URL should share an id: %s != %s", a, b)
	}
	if a == c {
		t.Fatal("different URLs should get different ids")
	}
}

func TestPrequeue_FailureAllowsRetry(t *testing.T) {
	fs := afero.NewMemMapFs()
	m, err := NewManager(fs, "/trailers", failingDownload)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	id := m.Prequeue("https://www.youtube.com/watch?v=abc")
	item := waitForStatus(t, m, id, StatusFailed)
	if item.Error == "" {
		t.Fatal("expected failure reason")
	}

	// A failed entry may be queued again.
	m.download = writeFileDownload(fs, []byte("x"))
	retryID := m.Prequeue("https://www.youtube.com/watch?v=abc")
	if retryID != id {
		t.Fatalf("retry should reuse the id, got %s", retryID)
	}
	waitForStatus(t, m, id, StatusReady)
}

func TestServe_NotReady(t *testing.T) {
	fs := afero.NewMemMapFs()
	m, err := NewManager(fs, "/trailers", failingDownload)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	if err := m.Serve("unknown", rec, req); err == nil {
		t.Fatal("expected error for unknown id")
	}

	id := m.Prequeue("https://www.youtube.com/watch?v=abc")
	waitForStatus(t, m, id, StatusFailed)
	if err := m.Serve(id, rec, req); err == nil {
		t.Fatal("expected error for unready trailer")
	}
}

func TestServe_StreamsContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := []byte("fake mp4 payload")
	m, err := NewManager(fs, "/trailers", writeFileDownload(fs, payload))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	id := m.Prequeue("https://www.youtube.com/watch?v=abc")
	waitForStatus(t, m, id, StatusReady)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	if err := m.Serve(id, rec, req); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Body.String() != string(payload) {
		t.Fatal("served body does not match download")
	}
}

func TestServe_ConcurrentWithDownload(t *testing.T) {
	fs := afero.NewMemMapFs()
	release := make(chan struct{})
	slowDownload := func(_ context.Context, _ string, outPath string) error {
		<-release
		return afero.WriteFile(fs, outPath, []byte("x"), 0o644)
	}
	m, err := NewManager(fs, "/trailers", slowDownload)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	id := m.Prequeue("https://www.youtube.com/watch?v=abc")

	// Hammer Serve while the download goroutine transitions the item from
	// downloading to ready underneath it.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/stream", nil)
				_ = m.Serve(id, rec, req)
			}
		}()
	}
	close(release)
	wg.Wait()

	waitForStatus(t, m, id, StatusReady)
	rec := httptest.NewRecorder()
	if err := m.Serve(id, rec, httptest.NewRequest(http.MethodGet, "/stream", nil)); err != nil {
		t.Fatalf("Serve after download failed: %v", err)
	}
	if rec.Body.String() != "x" {
		t.Fatal("served body does not match download")
	}
}

func TestCleanup_RemovesAgedEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	m, err := NewManager(fs, "/trailers", writeFileDownload(fs, []byte("x")))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	id := m.Prequeue("https://www.youtube.com/watch?v=abc")
	item := waitForStatus(t, m, id, StatusReady)

	// Fresh entries survive.
	m.cleanup(time.Now())
	if _, ok := m.Status(id); !ok {
		t.Fatal("fresh entry should survive cleanup")
	}

	// Ready but never accessed: gone after the unused grace period.
	m.cleanup(time.Now().Add(unusedTimeout + time.Minute))
	if _, ok := m.Status(id); ok {
		t.Fatal("unused entry should be cleaned up")
	}
	if exists, _ := afero.Exists(fs, item.FilePath); exists {
		t.Fatal("cleanup should delete the file")
	}
}
