// Package archive looks up and downloads web archive snapshots.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/azizemirhan/hubcenter/internal/apperr"
	"github.com/azizemirhan/hubcenter/internal/httpclient"
	"github.com/azizemirhan/hubcenter/internal/logging"
)

const (
	// DefaultBaseURL is the public archive.org endpoint.
	DefaultBaseURL = "https://archive.org"
	// MaxSnapshotBytes bounds how much of a snapshot is read.
	MaxSnapshotBytes = 50000
	// AcceptLength is the length at which a snapshot is taken without trying further candidates.
	AcceptLength = 1000
	// MinLength is the shortest snapshot that still counts as content.
	MinLength = 500
)

// Snapshot is a downloaded archived page.
type Snapshot struct {
	OriginalURL string
	URL         string
	HTML        string
}

type availability struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Status    string `json:"status"`
			Timestamp string `json:"timestamp"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// Client talks to the availability API and fetches snapshots.
type Client struct {
	baseURL string
	exec    *httpclient.Executor
	logger  logging.Logger
}

// NewClient returns a client for baseURL. A nil exec uses the default retry policy.
func NewClient(baseURL string, exec *httpclient.Executor, logger logging.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if exec == nil {
		exec = httpclient.NewExecutor(nil, httpclient.DefaultRetryConfig())
	}
	return &Client{baseURL: baseURL, exec: exec, logger: logging.OrDiscard(logger)}
}

// Closest returns the closest snapshot URL for target, or "" when the archive has none.
func (c *Client) Closest(ctx context.Context, target string) (string, error) {
	endpoint := c.baseURL + "/wayback/available?url=" + url.QueryEscape(target)
	resp, err := c.exec.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return "", fmt.Errorf("archive availability request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("archive availability returned status %d", resp.StatusCode)
	}

	var payload availability
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("could not decode archive availability: %w", err)
	}
	closest := payload.ArchivedSnapshots.Closest
	if !closest.Available || closest.URL == "" {
		return "", nil
	}
	return closest.URL, nil
}

// Fetch downloads a snapshot body, truncated to MaxSnapshotBytes.
func (c *Client) Fetch(ctx context.Context, snapshotURL string) (string, error) {
	resp, err := c.exec.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, snapshotURL, nil)
	})
	if err != nil {
		return "", fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxSnapshotBytes))
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	return string(body), nil
}

// Candidates lists the URLs looked up for domain, in order.
func Candidates(domain string) []string {
	return []string{
		"https://" + domain,
		"https://www." + domain,
		"https://" + domain + "/iletisim",
		"https://" + domain + "/contact",
	}
}

// Latest walks the candidates for domain and returns the first snapshot longer
// than AcceptLength, else the longest one of at least MinLength. Lookup errors
// on one candidate do not stop the walk.
func (c *Client) Latest(ctx context.Context, domain string) (Snapshot, error) {
	var best Snapshot
	for _, candidate := range Candidates(domain) {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		snapshotURL, err := c.Closest(ctx, candidate)
		if err != nil {
			c.logger.WithError(err).WithField("url", candidate).Debug("archive lookup failed")
			continue
		}
		if snapshotURL == "" {
			continue
		}
		html, err := c.Fetch(ctx, snapshotURL)
		if err != nil {
			c.logger.WithError(err).WithField("snapshot", snapshotURL).Debug("snapshot fetch failed")
			continue
		}
		snap := Snapshot{OriginalURL: candidate, URL: snapshotURL, HTML: html}
		if len(html) > AcceptLength {
			return snap, nil
		}
		if len(html) > len(best.HTML) {
			best = snap
		}
	}
	if len(best.HTML) >= MinLength {
		return best, nil
	}
	return Snapshot{}, &apperr.FetchError{Domain: domain, Err: fmt.Errorf("archive: %w", apperr.ErrNoContent)}
}
