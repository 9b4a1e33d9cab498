// Package remote is a thin adapter over the app's backend-as-a-service REST
// store (PostgREST-style). Every call is scoped to an owner identity; the
// hybrid cache layer decides which failures are tolerated.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mzahid/tartil/internal/constants"
	"github.com/mzahid/tartil/internal/domain"
	"github.com/mzahid/tartil/internal/httpclient"
	"github.com/mzahid/tartil/internal/logger"
)

// ErrNotConfigured is returned by every call when no remote URL is set. The
// cache manager treats it like any other remote failure: local-only mode.
var ErrNotConfigured = fmt.Errorf("remote store not configured")

type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	log     *logger.Logger
}

func NewClient(baseURL, apiKey string, hc *httpclient.Client, log *logger.Logger) *Client {
	if hc == nil {
		hc = httpclient.NewClient(nil, 0)
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    hc,
		log:     log.WithComponent("remote"),
	}
}

// progressRow is the remote wire shape of a progress record.
type progressRow struct {
	OwnerID        string    `json:"owner_id"`
	Level          int       `json:"level"`
	CompletedUnits int       `json:"completed_units"`
	AccuracyScore  int       `json:"accuracy_score"`
	LastUpdated    time.Time `json:"last_updated"`
}

// UpsertProgress writes a record for (ownerID, level), overwriting all fields
// on conflict. Last write wins; there is no optimistic-concurrency token.
func (c *Client) UpsertProgress(ctx context.Context, ownerID string, rec domain.ProgressRecord) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	row := progressRow{
		OwnerID:        ownerID,
		Level:          rec.Level,
		CompletedUnits: rec.CompletedUnits,
		AccuracyScore:  rec.AccuracyScore,
		LastUpdated:    rec.LastUpdated,
	}
	body, err := json.Marshal([]progressRow{row})
	if err != nil {
		return fmt.Errorf("failed to encode progress row: %w", err)
	}

	u := fmt.Sprintf("%s/rest/v1/%s?on_conflict=owner_id,level", c.baseURL, constants.ProgressTable)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", constants.MimeTypeJSON)
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("progress upsert failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // deferred cleanup

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("progress upsert failed: %s", resp.Status)
	}
	return nil
}

// QueryProgress returns every progress record stored for the owner.
func (c *Client) QueryProgress(ctx context.Context, ownerID string) ([]domain.ProgressRecord, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	u := fmt.Sprintf("%s/rest/v1/%s?owner_id=eq.%s&order=level.asc",
		c.baseURL, constants.ProgressTable, url.QueryEscape(ownerID))

	var rows []progressRow
	if err := c.getJSON(ctx, u, &rows); err != nil {
		return nil, fmt.Errorf("progress query failed: %w", err)
	}

	recs := make([]domain.ProgressRecord, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, domain.ProgressRecord{
			Level:          r.Level,
			CompletedUnits: r.CompletedUnits,
			AccuracyScore:  r.AccuracyScore,
			LastUpdated:    r.LastUpdated,
		})
	}
	return recs, nil
}

// ListRecordings returns the owner's cloud conversation recordings, newest
// first.
func (c *Client) ListRecordings(ctx context.Context, ownerID string) ([]domain.CloudRecording, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	u := fmt.Sprintf("%s/rest/v1/%s?owner_id=eq.%s&order=created_at.desc",
		c.baseURL, constants.RecordingsTable, url.QueryEscape(ownerID))

	var recs []domain.CloudRecording
	if err := c.getJSON(ctx, u, &recs); err != nil {
		return nil, fmt.Errorf("recordings query failed: %w", err)
	}
	return recs, nil
}

// DeleteRecording removes one recording, filtered by both id and owner so a
// stale id can never touch another owner's data.
func (c *Client) DeleteRecording(ctx context.Context, ownerID, id string) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	u := fmt.Sprintf("%s/rest/v1/%s?id=eq.%s&owner_id=eq.%s",
		c.baseURL, constants.RecordingsTable, url.QueryEscape(id), url.QueryEscape(ownerID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("recording delete failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // deferred cleanup

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("recording delete failed: %s", resp.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, u string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // deferred cleanup

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("remote request failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", constants.MimeTypeJSON)
}
