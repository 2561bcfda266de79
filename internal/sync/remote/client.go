// Package remote implements the document-store client for the shared
// anniversary backend: plain HTTP JSON for fetch and store, a websocket
// subscription for live updates.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
	"github.com/hungduong/loveanniversary/internal/models"
	syncpkg "github.com/hungduong/loveanniversary/internal/sync"
)

// Config holds the remote backend connection configuration.
type Config struct {
	Endpoint string        // base URL, e.g. https://sync.example.com
	Timeout  time.Duration // per-request cap, on top of caller contexts
}

// Client talks to the remote document store. It implements
// sync.DocumentStore.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client for the given backend.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

// documentURL builds the per-couple document resource URL.
func (c *Client) documentURL(coupleID string) string {
	return c.endpoint + "/couples/" + url.PathEscape(coupleID)
}

// Fetch retrieves the remote document for a couple id.
func (c *Client) Fetch(ctx context.Context, coupleID string) (*models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.documentURL(coupleID), nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSyncFailed, "failed to build fetch request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSyncUnavailable, "fetch request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.New(apperrors.ErrRemoteNotFound, "no remote document for "+coupleID)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.New(apperrors.ErrSyncFailed,
			fmt.Sprintf("fetch failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var doc models.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSyncFailed, "failed to decode remote document", err)
	}
	return &doc, nil
}

// Store writes the document for a couple id. PATCH carries the whole
// document; the backend merges it field-by-field into the stored copy.
func (c *Client) Store(ctx context.Context, coupleID string, doc *models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrSyncFailed, "failed to encode document", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.documentURL(coupleID), bytes.NewReader(data))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrSyncFailed, "failed to build store request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrSyncUnavailable, "store request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.New(apperrors.ErrSyncFailed,
			fmt.Sprintf("store failed with status %d: %s", resp.StatusCode, string(body)))
	}
	return nil
}

// Watch opens the live websocket subscription for a couple id.
func (c *Client) Watch(ctx context.Context, coupleID string) (syncpkg.Subscription, error) {
	wsURL, err := watchURL(c.endpoint, coupleID)
	if err != nil {
		return nil, err
	}
	return dialSubscription(ctx, wsURL)
}

// watchURL derives the websocket watch URL from the HTTP endpoint.
func watchURL(endpoint, coupleID string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrSyncFailed, "invalid remote endpoint", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", apperrors.New(apperrors.ErrSyncFailed, "unsupported endpoint scheme: "+u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/couples/" + url.PathEscape(coupleID) + "/watch"
	return u.String(), nil
}
