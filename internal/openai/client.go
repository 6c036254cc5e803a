// Package openai is a minimal client for the OpenAI REST API, covering only
// the surface this service touches: embeddings, file upload, vector store
// attachment, and the Assistants v2 thread/run endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 60 * time.Second

	// All Assistants endpoints are still gated behind a beta header.
	betaHeader = "assistants=v2"
)

// Client communicates with the OpenAI API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	// uploadClient carries a longer timeout for multipart file uploads.
	uploadClient *http.Client
}

// NewClient creates a Client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", betaHeader)
}

// apiError mirrors the provider's standard error envelope.
type apiError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// doJSON issues a JSON request and decodes the response body into out
// (skipped when out is nil). A non-2xx status or an error envelope in the
// body is returned as a classified *Error.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindInvalidInput, Op: op, Msg: "marshaling request", Err: err}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Msg: "creating request", Err: err}
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Msg: "reading response", Err: err}
	}

	if msg, ok := errorMessage(raw); ok {
		return &Error{Kind: KindApplication, Op: op, Msg: msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Kind: KindApplication, Op: op, Msg: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Kind: KindMalformed, Op: op, Msg: "decoding response", Err: err}
		}
	}
	return nil
}

// errorMessage extracts the message from a provider error envelope, if present.
func errorMessage(raw []byte) (string, bool) {
	var e apiError
	if err := json.Unmarshal(raw, &e); err != nil || e.Error == nil {
		return "", false
	}
	if e.Error.Message == "" {
		return "unknown error", true
	}
	return e.Error.Message, true
}

// Assistant is the subset of the assistant object this service reads.
type Assistant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValidateAssistant reports whether assistantID names a reachable assistant.
func (c *Client) ValidateAssistant(ctx context.Context, assistantID string) (bool, error) {
	if assistantID == "" {
		return false, nil
	}
	var a Assistant
	if err := c.doJSON(ctx, "get assistant", http.MethodGet, "/assistants/"+assistantID, nil, &a); err != nil {
		if KindOf(err) == KindApplication {
			return false, nil
		}
		return false, err
	}
	return a.ID == assistantID, nil
}
