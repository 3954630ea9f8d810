package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ImageHandler proxies poster images with on-disk caching so the browser
// never talks to the catalog's image CDN directly.
type ImageHandler struct {
	cacheDir   string
	httpc      *http.Client
	mu         sync.Mutex
	inProgress map[string]chan struct{} // dedupe concurrent fetches of the same URL
}

func NewImageHandler(cacheDir string) *ImageHandler {
	imgCacheDir := filepath.Join(cacheDir, "images")
	if err := os.MkdirAll(imgCacheDir, 0755); err != nil {
		log.Printf("[ImageProxy] could not create cache dir %s: %v", imgCacheDir, err)
	}

	return &ImageHandler{
		cacheDir: imgCacheDir,
		httpc: &http.Client{
			Timeout: 30 * time.Second,
		},
		inProgress: make(map[string]chan struct{}),
	}
}

// Proxy fetches and caches a poster image.
// Query params:
//   - url: source image URL (required, image.tmdb.org only)
func (h *ImageHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	sourceURL := r.URL.Query().Get("url")
	if sourceURL == "" {
		writeError(w, http.StatusBadRequest, "url parameter required")
		return
	}

	if !strings.Contains(sourceURL, "image.tmdb.org") {
		writeError(w, http.StatusForbidden, "URL not allowed")
		return
	}

	cachePath := filepath.Join(h.cacheDir, cacheKey(sourceURL))

	if h.serveCached(w, cachePath, "HIT") {
		return
	}

	// Only one request fetches a given URL; the rest wait and read the
	// cache it fills.
	h.mu.Lock()
	if ch, exists := h.inProgress[cachePath]; exists {
		h.mu.Unlock()
		<-ch
		if h.serveCached(w, cachePath, "HIT") {
			return
		}
		writeError(w, http.StatusBadGateway, "failed to load image")
		return
	}
	ch := make(chan struct{})
	h.inProgress[cachePath] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.inProgress, cachePath)
		close(ch)
		h.mu.Unlock()
	}()

	resp, err := h.httpc.Get(sourceURL)
	if err != nil {
		log.Printf("[ImageProxy] fetch error for %s: %v", sourceURL, err)
		writeError(w, http.StatusBadGateway, "failed to fetch image")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[ImageProxy] fetch returned %d for %s", resp.StatusCode, sourceURL)
		writeError(w, http.StatusBadGateway, "image source error")
		return
	}

	tmpPath := cachePath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		log.Printf("[ImageProxy] cache create error: %v", err)
		// Serve without caching.
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			writeError(w, http.StatusBadGateway, "failed to fetch image")
			return
		}
		h.serveBytes(w, data, "MISS-NOCACHE")
		return
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmpPath)
		log.Printf("[ImageProxy] cache write error: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch image")
		return
	}
	f.Close()

	if err := os.Rename(tmpPath, cachePath); err != nil {
		os.Remove(tmpPath)
		log.Printf("[ImageProxy] cache rename error: %v", err)
	}

	if !h.serveCached(w, cachePath, "MISS") {
		writeError(w, http.StatusInternalServerError, "failed to read cached image")
	}
}

func (h *ImageHandler) serveCached(w http.ResponseWriter, cachePath, cacheState string) bool {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return false
	}
	h.serveBytes(w, data, cacheState)
	return true
}

func (h *ImageHandler) serveBytes(w http.ResponseWriter, data []byte, cacheState string) {
	// Sniff the type from the bytes; the cache stores no metadata.
	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Cache-Control", "public, max-age=2592000") // 30 days
	w.Header().Set("X-Cache", cacheState)
	w.Write(data)
}

func cacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:16])
}

// ClearCache removes all cached images.
func (h *ImageHandler) ClearCache() error {
	entries, err := os.ReadDir(h.cacheDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(h.cacheDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (h *ImageHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
