// ABOUTME: Tests for the logo downloader
// ABOUTME: Tests HTTP download, caching, and error handling
package artwork

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func newTestDownloader(t *testing.T) *Downloader {
	t.Helper()
	dl, err := NewDownloader(filepath.Join(t.TempDir(), "logos"))
	if err != nil {
		t.Fatalf("failed to create downloader: %v", err)
	}
	return dl
}

func TestNewDownloaderCreatesDir(t *testing.T) {
	dl := newTestDownloader(t)

	if _, err := os.Stat(dl.cacheDir); os.IsNotExist(err) {
		t.Error("cache directory was not created")
	}
}

func TestNewDownloaderDefaultDir(t *testing.T) {
	dl, err := NewDownloader("")
	if err != nil {
		t.Fatalf("failed to create downloader: %v", err)
	}
	if !strings.HasPrefix(dl.cacheDir, os.TempDir()) {
		t.Errorf("expected default cache dir in temp dir, got %s", dl.cacheDir)
	}
}

func TestDownloadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake logo"))
	}))
	defer server.Close()

	dl := newTestDownloader(t)

	path, err := dl.Download(context.Background(), server.URL+"/gb.png")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("expected .png cache file, got %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read logo file: %v", err)
	}
	if string(content) != "fake logo" {
		t.Errorf("expected content 'fake logo', got '%s'", string(content))
	}
}

func TestDownloadCaching(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.Write([]byte("fake logo"))
	}))
	defer server.Close()

	dl := newTestDownloader(t)

	path1, err := dl.Download(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("first download failed: %v", err)
	}
	path2, err := dl.Download(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second download failed: %v", err)
	}

	if n := atomic.LoadInt32(&requestCount); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
	if path1 != path2 {
		t.Errorf("expected same path for cached download, got %s and %s", path1, path2)
	}
}

func TestConcurrentDownloadsFetchOnce(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.Write([]byte("fake logo"))
	}))
	defer server.Close()

	dl := newTestDownloader(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := dl.Download(context.Background(), server.URL+"/logo.png"); err != nil {
				t.Errorf("download failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&requestCount); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestDownloadHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dl := newTestDownloader(t)

	_, err := dl.Download(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected error to mention 404, got: %v", err)
	}

	// nothing cached after a failure
	entries, _ := os.ReadDir(dl.cacheDir)
	if len(entries) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(entries))
	}
}

func TestDownloadEmptyURL(t *testing.T) {
	dl := newTestDownloader(t)

	path, err := dl.Download(context.Background(), "")
	if err != nil {
		t.Errorf("expected no error for empty URL, got: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path for empty URL, got: %s", path)
	}
}

func TestDownloadInvalidURL(t *testing.T) {
	dl := newTestDownloader(t)

	if _, err := dl.Download(context.Background(), "not-a-valid-url"); err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func TestGetExtension(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://a.espncdn.com/i/teamlogos/nfl/500/gb.png", ".png"},
		{"http://example.com/image.jpg", ".jpg"},
		{"http://example.com/image.svg?size=large", ".svg"},
		{"http://example.com/image", ".png"},
		{"http://127.0.0.1:4321", ".png"},
	}

	for _, tt := range tests {
		result := getExtension(tt.url)
		if result != tt.expected {
			t.Errorf("getExtension(%q) = %q, expected %q", tt.url, result, tt.expected)
		}
	}
}

func TestCleanup(t *testing.T) {
	dl := newTestDownloader(t)

	if err := dl.Cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := os.Stat(dl.cacheDir); !os.IsNotExist(err) {
		t.Error("cache directory still exists after cleanup")
	}
}
