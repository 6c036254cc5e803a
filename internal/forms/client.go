// Package forms is a read-only client for the Gravity Forms REST v2 API.
// The service only ever pulls active entries for a single configured form.
package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client communicates with a Gravity Forms installation over its REST API.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	pageSize       int
	httpClient     *http.Client
}

// NewClient creates a Client for the WordPress site at baseURL, authenticating
// with the given consumer key/secret pair. pageSize <= 0 defaults to 50.
func NewClient(baseURL, consumerKey, consumerSecret string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		pageSize:       pageSize,
		httpClient:     &http.Client{Timeout: defaultTimeout},
	}
}

type entriesResponse struct {
	TotalCount int     `json:"total_count"`
	Entries    []Entry `json:"entries"`
}

// ListActiveEntries returns all active entries for the form, walking pages
// until the reported total is reached.
func (c *Client) ListActiveEntries(ctx context.Context, formID string) ([]Entry, error) {
	var all []Entry
	for page := 1; ; page++ {
		resp, err := c.entriesPage(ctx, formID, page)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Entries...)
		if len(resp.Entries) == 0 || len(all) >= resp.TotalCount {
			return all, nil
		}
	}
}

func (c *Client) entriesPage(ctx context.Context, formID string, page int) (entriesResponse, error) {
	q := url.Values{}
	q.Set("search", `{"status":"active"}`)
	q.Set("paging[page_size]", strconv.Itoa(c.pageSize))
	q.Set("paging[current_page]", strconv.Itoa(page))

	endpoint := fmt.Sprintf("%s/wp-json/gf/v2/forms/%s/entries?%s", c.baseURL, url.PathEscape(formID), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entriesResponse{}, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entriesResponse{}, fmt.Errorf("fetching entries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entriesResponse{}, fmt.Errorf("fetching entries: unexpected status %d", resp.StatusCode)
	}

	var result entriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return entriesResponse{}, fmt.Errorf("decoding entries: %w", err)
	}
	return result, nil
}
