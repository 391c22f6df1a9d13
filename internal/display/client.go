package display

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/models"
)

// Client polls the display endpoint of the API server and probes media URLs.
type Client struct {
	baseURL      string
	http         *http.Client
	probeTimeout time.Duration
	logger       *zap.Logger
}

// NewClient creates a display API client for baseURL (e.g. http://localhost:8080).
func NewClient(baseURL string, timeout, probeTimeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: timeout},
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// FetchQueue returns the queue of tvID. A 404 is errs.ErrNotFound.
func (c *Client) FetchQueue(ctx context.Context, tvID string) (*QueueResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+models.DisplayPathFor(tvID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch queue: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, errs.NotFound("tv", tvID)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode queue (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, fmt.Errorf("fetch queue: status %d: %s", resp.StatusCode, env.Error)
	}
	var out QueueResponse
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("decode queue data: %w", err)
	}
	if out.Ads == nil {
		out.Ads = []QueueItem{}
	}
	return &out, nil
}

// Probe issues a HEAD request for url; a transport error or a status >= 400 fails.
func (c *Client) Probe(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("empty media url")
	}
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
