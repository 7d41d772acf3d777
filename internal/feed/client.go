package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Client fetches the raw alert feed body over HTTP.
type Client struct {
	url        string
	userAgent  string
	httpClient *http.Client
}

func NewClient(url, userAgent string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a single GET against the feed URL and returns the decoded
// body. The feed serves UTF-8 with a byte-order mark, so a leading BOM is
// stripped. An HTTP status >= 400 is a fetch error.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("http %d GET %s: %s", resp.StatusCode, c.url, strings.TrimSpace(string(msg)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	return bytes.TrimPrefix(body, utf8BOM), nil
}
