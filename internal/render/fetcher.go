// Package render turns an assembled outline into the final PDF byte stream.
// Image references are resolved through a small read-through fetcher that
// understands the media and static URL namespaces before falling back to HTTP.
package render

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Fetcher resolves document asset references to bytes. References under
// MediaURL map to files below MediaRoot, references under StaticURL are
// looked up across the static roots in order, and anything else goes through
// the HTTP client.
type Fetcher struct {
	MediaURL    string
	MediaRoot   string
	StaticURL   string
	StaticRoots []string
	Client      *http.Client
}

// NewFetcherFromEnv builds a fetcher from LAUDOCORE_MEDIA_URL,
// LAUDOCORE_MEDIA_ROOT, LAUDOCORE_STATIC_URL and LAUDOCORE_STATIC_ROOTS
// (colon-separated).
func NewFetcherFromEnv() *Fetcher {
	var roots []string
	for _, r := range strings.Split(os.Getenv("LAUDOCORE_STATIC_ROOTS"), ":") {
		if r = strings.TrimSpace(r); r != "" {
			roots = append(roots, r)
		}
	}
	return &Fetcher{
		MediaURL:    envDefault("LAUDOCORE_MEDIA_URL", "/media/"),
		MediaRoot:   envDefault("LAUDOCORE_MEDIA_ROOT", "./media"),
		StaticURL:   envDefault("LAUDOCORE_STATIC_URL", "/static/"),
		StaticRoots: roots,
		Client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Handles reports whether ref belongs to one of the fetcher's namespaces:
// the media or static URL prefixes, or an absolute http(s) URL.
func (f *Fetcher) Handles(ref string) bool {
	if f.MediaURL != "" && strings.HasPrefix(ref, f.MediaURL) {
		return true
	}
	if f.StaticURL != "" && strings.HasPrefix(ref, f.StaticURL) {
		return true
	}
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Fetch resolves ref to its raw bytes.
func (f *Fetcher) Fetch(ref string) ([]byte, error) {
	if f.MediaURL != "" && strings.HasPrefix(ref, f.MediaURL) {
		rest := strings.TrimPrefix(ref, f.MediaURL)
		return readLocal(filepath.Join(f.MediaRoot, filepath.FromSlash(rest)), f.MediaRoot)
	}
	if f.StaticURL != "" && strings.HasPrefix(ref, f.StaticURL) {
		rest := strings.TrimPrefix(ref, f.StaticURL)
		for _, root := range f.StaticRoots {
			b, err := readLocal(filepath.Join(root, filepath.FromSlash(rest)), root)
			if err == nil {
				return b, nil
			}
		}
		return nil, fmt.Errorf("static asset %s not found", ref)
	}
	return f.fetchHTTP(ref)
}

func (f *Fetcher) fetchHTTP(ref string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(ref)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func readLocal(path, root string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if abs != absRoot && !strings.HasPrefix(abs, absRoot+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %s escapes root", path)
	}
	return os.ReadFile(abs)
}
