// Package remote talks to a clockin REST service as a time-entry store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/repository"
)

const entriesPath = "/api/timeEntries"

var _ repository.TimeEntryRepository = (*Client)(nil)

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("time-entry service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("time-entry service returned %d: %s", e.StatusCode, e.Message)
}

// Client is an HTTP time-entry store.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

// NewClient builds a client for baseURL. A non-empty token is sent as a
// bearer token on every request.
func NewClient(ctx context.Context, baseURL, token string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewInvalidInputError("remote url", baseURL, "must be an absolute http(s) URL")
	}

	httpClient := &http.Client{}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	httpClient.Timeout = timeout

	return &Client{baseURL: u, token: token, httpClient: httpClient}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// ListTimeEntries fetches GET /api/timeEntries?email=owner.
func (c *Client) ListTimeEntries(ctx context.Context, owner string) ([]*domain.TimeEntry, error) {
	endpoint := c.endpoint(entriesPath, url.Values{"email": {owner}})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	entries := make([]*domain.TimeEntry, 0)
	if err := c.do(req, http.StatusOK, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateTimeEntry sends POST /api/timeEntries and copies the stored entry,
// including its ID, back into entry.
func (c *Client) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding time entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(entriesPath, nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var stored domain.TimeEntry
	if err := c.do(req, http.StatusCreated, &stored); err != nil {
		return err
	}
	*entry = stored
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
			return errors.NewTimeoutError(req.Method+" "+req.URL.Path, c.httpClient.Timeout.String())
		}
		return fmt.Errorf("time-entry service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != want {
		return decodeStatusError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding time-entry response: %w", err)
	}
	return nil
}

// decodeStatusError reads the {"error": "..."} body the service sends.
func decodeStatusError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	statusErr := &StatusError{StatusCode: status, Message: msg}
	if status == http.StatusBadRequest {
		return errors.NewValidationError(msg, statusErr)
	}
	return statusErr
}
