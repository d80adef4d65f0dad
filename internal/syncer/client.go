// Package syncer reconciles local offline mutations with the remote
// authority: it pushes unsynced records, applies acknowledgements back into
// the local store, and owns every synced-flag flip.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mrlokans/circulate/internal/entities"
)

// ErrSyncFailed wraps every transport or remote-authority failure during a
// reconciliation attempt. Synced flags are never touched on this error, so
// a retry of the whole sync is always safe: remote upserts are idempotent.
var ErrSyncFailed = errors.New("sync failed")

// Client talks to the remote authority's sync endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a sync client for the authority at baseURL,
// authenticating with the given bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		token:   token,
	}
}

type fullSyncRequest struct {
	Books     []entities.Book     `json:"books"`
	Checkouts []entities.Checkout `json:"checkouts"`
}

type fullSyncResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type pushRequest struct {
	Checkouts []entities.Checkout `json:"checkouts"`
}

// Result is the per-record acknowledgement of the push endpoint.
type Result struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

type pushResponse struct {
	Results []Result `json:"results"`
	Error   string   `json:"error,omitempty"`
}

// FullSync submits the entire catalog plus the unsynced checkouts as one
// batch. The authority accepts or rejects the batch as a whole.
func (c *Client) FullSync(ctx context.Context, books []entities.Book, checkouts []entities.Checkout) error {
	// Empty slices still serialize as [], not null; a sync with nothing to
	// say is a valid (and successful) exchange.
	if books == nil {
		books = []entities.Book{}
	}
	if checkouts == nil {
		checkouts = []entities.Checkout{}
	}

	var resp fullSyncResponse
	if err := c.post(ctx, "/api/sync", fullSyncRequest{Books: books, Checkouts: checkouts}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: server rejected batch: %s", ErrSyncFailed, resp.Error)
	}
	return nil
}

// PushCheckouts submits a batch of checkouts to the per-record endpoint and
// returns one acknowledgement per record. A failed record does not abort
// its siblings.
func (c *Client) PushCheckouts(ctx context.Context, checkouts []entities.Checkout) ([]Result, error) {
	var resp pushResponse
	if err := c.post(ctx, "/api/offline-sync", pushRequest{Checkouts: checkouts}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrSyncFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrSyncFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Authorization failures are surfaced, never retried automatically.
		return fmt.Errorf("%w: unauthorized (status %d)", ErrSyncFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: unexpected status %d: %s", ErrSyncFailed, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrSyncFailed, err)
	}
	return nil
}
