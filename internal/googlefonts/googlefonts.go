// Package googlefonts finds downloadable font files in the google/fonts repository so the
// overlay font named in the engine config can be installed under the asset root.
package googlefonts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	apiBase = "https://api.github.com/repos/google/fonts/contents/ofl"
	// Only files under this prefix are accepted; listings cannot redirect downloads elsewhere.
	rawPrefix = "https://raw.githubusercontent.com/google/fonts/"
)

type githubFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Client queries the repository listing.
type Client struct {
	HTTP      *http.Client
	APIBase   string
	RawPrefix string
}

// New returns a client for the public GitHub API.
func New() *Client {
	return &Client{HTTP: &http.Client{Timeout: 15 * time.Second}, APIBase: apiBase, RawPrefix: rawPrefix}
}

// NormalizeFamily converts a display name to the folder names google/fonts uses.
// e.g. "Inter" -> "inter", "Open Sans" -> "opensans", "open-sans".
func NormalizeFamily(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	noSpaces := strings.ReplaceAll(lower, " ", "")
	withHyphens := strings.ReplaceAll(lower, " ", "-")
	out := []string{noSpaces}
	if withHyphens != noSpaces {
		out = append(out, withHyphens)
	}
	return out
}

// DownloadURL returns the raw download URL for a font file in folder, preferring a
// non-italic cut.
func (c *Client) DownloadURL(ctx context.Context, folder string) (string, error) {
	u := c.APIBase + "/" + url.PathEscape(folder)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("font %q not found on Google Fonts", folder)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google fonts: HTTP %d", resp.StatusCode)
	}
	var files []githubFile
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	var fallback string
	for _, f := range files {
		if f.Type != "file" || f.DownloadURL == "" || !strings.HasPrefix(f.DownloadURL, c.RawPrefix) {
			continue
		}
		lower := strings.ToLower(f.Name)
		if !strings.HasSuffix(lower, ".ttf") && !strings.HasSuffix(lower, ".otf") {
			continue
		}
		if strings.Contains(lower, "italic") {
			if fallback == "" {
				fallback = f.DownloadURL
			}
			continue
		}
		return f.DownloadURL, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("no .ttf/.otf file found for %q on Google Fonts", folder)
}

// DownloadURLByFamily tries each NormalizeFamily variant and returns the first hit.
func (c *Client) DownloadURLByFamily(ctx context.Context, name string) (string, error) {
	candidates := NormalizeFamily(name)
	if len(candidates) == 0 {
		return "", fmt.Errorf("invalid font name")
	}
	var lastErr error
	for _, folder := range candidates {
		u, err := c.DownloadURL(ctx, folder)
		if err == nil {
			return u, nil
		}
		lastErr = err
	}
	return "", lastErr
}
