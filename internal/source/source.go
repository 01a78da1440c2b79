package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSourceUnavailable marks a failed fetch or an unparseable payload.
// Callers fall back to the cached snapshot when they see it.
var ErrSourceUnavailable = errors.New("source unavailable")

// ValidationError is raised at load time, before a snapshot is published,
// when a record violates the data contract.
type ValidationError struct {
	Source string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Source, e.Reason)
}

// Payloads holds the raw bodies of the three JSON sources from a single
// all-or-nothing fetch.
type Payloads struct {
	Items     []byte `json:"items"`
	Discounts []byte `json:"discounts"`
	Settings  []byte `json:"settings"`
}

// Client fetches the catalog sources over HTTP.
type Client struct {
	http          *http.Client
	baseURL       string
	itemsPath     string
	discountsPath string
	settingsPath  string
	logger        *zap.Logger
}

// NewClient creates a source client. baseURL is the root the three JSON
// documents are served under.
func NewClient(baseURL, itemsPath, discountsPath, settingsPath string, timeout time.Duration) *Client {
	return &Client{
		http:          &http.Client{Timeout: timeout},
		baseURL:       baseURL,
		itemsPath:     itemsPath,
		discountsPath: discountsPath,
		settingsPath:  settingsPath,
		logger:        util.GetLogger(),
	}
}

// FetchAll fetches the three sources concurrently. Any failure fails the
// whole fetch; a partial set of payloads is never returned. bypassCache
// appends a cache-defeating timestamp parameter so intermediaries cannot
// serve a stale copy on manual refresh.
func (c *Client) FetchAll(ctx context.Context, bypassCache bool) (*Payloads, error) {
	var payloads Payloads

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := c.fetch(ctx, c.itemsPath, bypassCache)
		payloads.Items = body
		return err
	})
	g.Go(func() error {
		body, err := c.fetch(ctx, c.discountsPath, bypassCache)
		payloads.Discounts = body
		return err
	})
	g.Go(func() error {
		body, err := c.fetch(ctx, c.settingsPath, bypassCache)
		payloads.Settings = body
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return &payloads, nil
}

func (c *Client) fetch(ctx context.Context, path string, bypassCache bool) ([]byte, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, err
	}
	if bypassCache {
		sep := "?"
		if parsed, err := url.Parse(u); err == nil && parsed.RawQuery != "" {
			sep = "&"
		}
		u = fmt.Sprintf("%s%sts=%d", u, sep, time.Now().UnixNano())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", path, err)
	}
	c.logger.Debug("Source fetched", zap.String("path", path), zap.Int("bytes", len(body)))
	return body, nil
}
