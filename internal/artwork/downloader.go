// ABOUTME: Team logo downloader with an on-disk cache
// ABOUTME: Downloads logo images once and serves later requests from disk
package artwork

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Downloader manages logo downloads
type Downloader struct {
	cacheDir string
	client   *http.Client

	// one download per cache path at a time
	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

// NewDownloader creates a downloader caching under cacheDir.
// An empty cacheDir uses a directory in the system temp dir.
func NewDownloader(cacheDir string) (*Downloader, error) {
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "sportsbrief-logos")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Downloader{
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 15 * time.Second},
		inflight: make(map[string]*sync.Mutex),
	}, nil
}

// Download fetches the image at url into the cache and returns its path
func (d *Downloader) Download(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", nil
	}

	cachePath := d.cachePath(url)

	lock := d.lockFor(cachePath)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(cachePath); err == nil {
		log.Debug().Str("path", cachePath).Msg("Logo cache hit")
		return cachePath, nil
	}

	log.Debug().Str("url", url).Msg("Downloading logo")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to download logo: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("logo download failed: HTTP %d", resp.StatusCode)
	}

	// write to a temp file so a failed copy never leaves a partial cache entry
	tmp, err := os.CreateTemp(d.cacheDir, "download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save logo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save logo: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save logo: %w", err)
	}

	log.Debug().Str("path", cachePath).Msg("Logo saved")
	return cachePath, nil
}

func (d *Downloader) cachePath(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(d.cacheDir, fmt.Sprintf("%x%s", hash[:8], getExtension(url)))
}

func (d *Downloader) lockFor(path string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.inflight[path]
	if !ok {
		l = &sync.Mutex{}
		d.inflight[path] = l
	}
	return l
}

// getExtension extracts file extension from URL
func getExtension(url string) string {
	url = strings.Split(url, "?")[0]

	ext := filepath.Ext(url)
	if len(ext) < 2 || len(ext) > 6 || strings.ContainsAny(ext, "/:") {
		return ".png"
	}
	return ext
}

// Cleanup removes the cache directory
func (d *Downloader) Cleanup() error {
	return os.RemoveAll(d.cacheDir)
}
