package zenassist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.zenmoney.ru"

// ErrTokenExpired marks an authentication failure: the token is missing,
// expired, or revoked. Callers present it as a re-auth prompt instead of a
// generic transport error.
var ErrTokenExpired = errors.New("access token expired or invalid")

// DiffClient is the server side of the sync protocol. The HTTP client is the
// production implementation; tests substitute an in-memory echo.
type DiffClient interface {
	// Sync requests the delta since the given cursor. A zero cursor asks for
	// the full dataset.
	Sync(ctx context.Context, serverTimestamp int64) (*Diff, error)
	// WriteDiff pushes local changes and returns the server's confirming
	// diff, which includes the entities as the server now holds them.
	WriteDiff(ctx context.Context, serverTimestamp int64, changes *Diff) (*Diff, error)
	// Suggest asks the server to fill in category and payee suggestions for
	// a draft transaction.
	Suggest(ctx context.Context, draft map[string]any) (*Suggestion, error)
}

// Client talks to the diff endpoint over HTTPS with bearer authentication.
type Client struct {
	BaseURL string
	Token   string

	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
}

// NewClient creates a production client for the default endpoint.
func NewClient(token string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// syncRequest is the wire shape of a diff request. currentClientTimestamp is
// the client's wall clock, serverTimestamp the cursor from the previous
// response (0 on first sync). Entity arrays ride alongside on write-through.
type syncRequest struct {
	CurrentClientTimestamp int64 `json:"currentClientTimestamp"`
	ServerTimestamp        int64 `json:"serverTimestamp"`
	Diff
}

func (c *Client) Sync(ctx context.Context, serverTimestamp int64) (*Diff, error) {
	return c.post(ctx, &syncRequest{
		CurrentClientTimestamp: time.Now().Unix(),
		ServerTimestamp:        serverTimestamp,
	})
}

func (c *Client) WriteDiff(ctx context.Context, serverTimestamp int64, changes *Diff) (*Diff, error) {
	req := &syncRequest{
		CurrentClientTimestamp: time.Now().Unix(),
		ServerTimestamp:        serverTimestamp,
	}
	if changes != nil {
		req.Diff = *changes
	}
	return c.post(ctx, req)
}

func (c *Client) post(ctx context.Context, body *syncRequest) (*Diff, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v8/diff/", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("diff request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrTokenExpired
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("diff request: server returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var diff Diff
	if err := json.NewDecoder(resp.Body).Decode(&diff); err != nil {
		return nil, fmt.Errorf("diff request: invalid response: %w", err)
	}
	return &diff, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Suggestion is what the server proposes for a draft transaction. The
// response is loosely shaped (fields may be scalars, arrays, or absent), so
// it is extracted by path rather than decoded into a rigid struct.
type Suggestion struct {
	Payee    string   `json:"payee,omitempty"`
	Merchant string   `json:"merchant,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

func (c *Client) Suggest(ctx context.Context, draft map[string]any) (*Suggestion, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v8/suggest/", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggest request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrTokenExpired
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("suggest request: server returned %s", resp.Status)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("suggest request: invalid response: %w", err)
	}
	return parseSuggestion(doc), nil
}

// parseSuggestion pulls the interesting fields out of the loosely-shaped
// suggest response.
func parseSuggestion(doc any) *Suggestion {
	s := &Suggestion{}
	if v, err := jsonpath.Get("$.payee", doc); err == nil {
		if str, ok := v.(string); ok {
			s.Payee = str
		}
	}
	if v, err := jsonpath.Get("$.merchant", doc); err == nil {
		if str, ok := v.(string); ok {
			s.Merchant = str
		}
	}
	if v, err := jsonpath.Get("$.tag[*]", doc); err == nil {
		if items, ok := v.([]any); ok {
			for _, item := range items {
				if str, ok := item.(string); ok {
					s.Tags = append(s.Tags, str)
				}
			}
		}
	}
	return s
}
