// Package fetch downloads remote scene assets to local files.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"
)

// Some hosts reject requests without a browser-looking agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var driveIDPattern = regexp.MustCompile(`(?:file/d/|id=)([a-zA-Z0-9_-]+)`)

// Downloader fetches remote files over HTTP.
type Downloader struct {
	client *http.Client
}

// NewDownloader returns a downloader with a bounded request timeout.
func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Download fetches rawURL and writes the body to destPath. Google Drive
// sharing links are rewritten to their direct-download form first. Any
// non-success response is an error; a partially written file is removed.
func (d *Downloader) Download(ctx context.Context, rawURL, destPath string) error {
	fetchURL := NormalizeURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", fetchURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to download %s: status %d", fetchURL, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", destPath, err)
	}
	return nil
}

// NormalizeURL rewrites Google Drive sharing links to the direct-download
// endpoint. Other URLs, and Drive links with no recognizable file ID, pass
// through unchanged.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "drive.google.com" {
		return rawURL
	}

	m := driveIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return rawURL
	}
	return "https://drive.google.com/uc?export=download&id=" + m[1]
}
