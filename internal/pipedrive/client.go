// Package pipedrive is the thin HTTP adapter over the upstream CRM API. It
// shapes outgoing requests, unwraps the response envelope, and classifies
// failures; records themselves pass through as opaque JSON.
package pipedrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/golovatskygroup/pipedrive-lens/internal/paginate"
)

// Client issues read-only requests against one Pipedrive account. It keeps
// no state between calls beyond the shared http.Client.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  *zap.Logger
}

// New builds a client for baseURL (no trailing slash required)
// authenticating with the given API token on every request.
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger.Named("pipedrive"),
	}
}

// APIError is a non-2xx or success:false answer from the upstream. Handlers
// surface it to the host as an error-flagged result; it never terminates
// the process.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}

// envelope is the common response wrapper. data stays raw: list endpoints
// put an array there, by-ID endpoints an object, search a wrapper object.
type envelope struct {
	Success        bool            `json:"success"`
	Data           json.RawMessage `json:"data"`
	Error          string          `json:"error"`
	ErrorInfo      string          `json:"error_info"`
	AdditionalData *additionalData `json:"additional_data"`
}

type additionalData struct {
	Pagination *pagination `json:"pagination"`
}

type pagination struct {
	Start                 int  `json:"start"`
	Limit                 int  `json:"limit"`
	MoreItemsInCollection bool `json:"more_items_in_collection"`
	NextStart             int  `json:"next_start"`
}

func (c *Client) do(ctx context.Context, apiPath string, query url.Values) (int, []byte, error) {
	u := c.baseURL + apiPath
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("x-api-token", c.token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	c.logger.Debug("upstream request",
		zap.String("path", apiPath),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp.StatusCode, body, nil
}

// getEnvelope performs one GET and returns the parsed envelope, converting
// transport-level and upstream-level failures into errors.
func (c *Client) getEnvelope(ctx context.Context, apiPath string, query url.Values) (*envelope, error) {
	status, body, err := c.do(ctx, apiPath, query)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", apiPath, err)
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{StatusCode: status, Message: upstreamMessage(status, body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{StatusCode: status, Message: "unparseable response body"}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "upstream reported failure"
		}
		return nil, &APIError{StatusCode: status, Message: msg}
	}
	return &env, nil
}

// listPage fetches one bounded slice of a paged collection. A response with
// no usable collection payload or no pagination metadata comes back as a
// final page: zero items, More unset.
func (c *Client) listPage(ctx context.Context, apiPath string, offset, limit int, extra url.Values) (*paginate.Page, error) {
	q := url.Values{}
	for k, vs := range extra {
		q[k] = vs
	}
	q.Set("start", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	env, err := c.getEnvelope(ctx, apiPath, q)
	if err != nil {
		return nil, err
	}

	page := &paginate.Page{}
	if isEmptyData(env.Data) {
		return page, nil
	}
	if err := json.Unmarshal(env.Data, &page.Items); err != nil {
		// Non-collection payload where a collection was expected: treat
		// as the final page rather than failing the aggregation.
		return &paginate.Page{}, nil
	}
	if env.AdditionalData != nil && env.AdditionalData.Pagination != nil {
		page.More = env.AdditionalData.Pagination.MoreItemsInCollection
	}
	return page, nil
}

// dataObject fetches a single-record endpoint and returns its data field.
func (c *Client) dataObject(ctx context.Context, apiPath string, query url.Values) (json.RawMessage, error) {
	env, err := c.getEnvelope(ctx, apiPath, query)
	if err != nil {
		return nil, err
	}
	if isEmptyData(env.Data) {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "no record in response"}
	}
	return env.Data, nil
}

// dataArray fetches an unpaginated collection endpoint.
func (c *Client) dataArray(ctx context.Context, apiPath string, query url.Values) ([]json.RawMessage, error) {
	env, err := c.getEnvelope(ctx, apiPath, query)
	if err != nil {
		return nil, err
	}
	if isEmptyData(env.Data) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "expected a collection in response"}
	}
	return items, nil
}

func isEmptyData(data json.RawMessage) bool {
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}

func upstreamMessage(status int, body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		if env.ErrorInfo != "" {
			return env.Error + ": " + env.ErrorInfo
		}
		return env.Error
	}
	s := strings.TrimSpace(string(body))
	if s == "" {
		return http.StatusText(status)
	}
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return s
}
