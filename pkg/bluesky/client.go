package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bskyarchive/pkg/errors"
	"bskyarchive/pkg/logger"
)

// Client is a thin ATProto xrpc client. Requests are single-shot: any
// non-success status surfaces as a typed error and the caller aborts the run.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a new xrpc client
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "bskyarchive/1.0 (static month archive builder)",
		},
		logger: log,
	}
}

// SetHeader sets a custom header for all subsequent requests
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBearerToken attaches a session access token to subsequent requests
func (c *Client) SetBearerToken(token string) {
	c.headers["Authorization"] = "Bearer " + token
}

// ClearBearerToken drops a previously attached session token
func (c *Client) ClearBearerToken() {
	delete(c.headers, "Authorization")
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.Newf(errors.KindUpstream, "network error: %v", err)
	}

	logger.LogRequest(req.Method, req.URL.String(), resp.StatusCode, duration.Seconds()*1000)

	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into target
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Newf(errors.KindUpstream, "failed to create request: %v", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp, url, target)
}

// PostJSON performs a POST request with a JSON body and decodes the response
func (c *Client) PostJSON(ctx context.Context, url string, body, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Newf(errors.KindUpstream, "failed to encode request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Newf(errors.KindUpstream, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decodeResponse(resp, url, target)
}

// decodeResponse checks the status and unmarshals the body into target
func (c *Client) decodeResponse(resp *http.Response, url string, target interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf(errors.KindUpstream, "failed to read response body: %v", err).WithCode(resp.StatusCode)
	}

	if err := c.checkResponseStatus(resp, url, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.Newf(errors.KindUpstream, "failed to parse JSON: %v", err).WithCode(resp.StatusCode)
	}

	return nil
}

// checkResponseStatus maps the HTTP status to the error taxonomy. ATProto
// error bodies carry an error name (e.g. ExpiredToken) which is preserved in
// the message so session invalidation can be recognized upstream.
func (c *Client) checkResponseStatus(resp *http.Response, url string, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	_ = json.Unmarshal(body, &apiErr)

	message := apiErr.Message
	if apiErr.Name != "" {
		message = fmt.Sprintf("%s: %s", apiErr.Name, apiErr.Message)
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    url,
		"error":  message,
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication rejected", fields)
		return errors.New(errors.KindAuth, message).WithCode(resp.StatusCode)
	default:
		c.logger.ErrorWithFields("upstream API error", fields)
		return errors.New(errors.KindUpstream, message).WithCode(resp.StatusCode)
	}
}

// ResolveHandle resolves a handle into its DID via the given xrpc base
func (c *Client) ResolveHandle(ctx context.Context, base, handle string) (string, error) {
	var response ResolveHandleResponse
	if err := c.GetJSON(ctx, ResolveHandleURL(base, handle), &response); err != nil {
		return "", err
	}
	return response.DID, nil
}

// AuthorFeed fetches one page of an author's feed
func (c *Client) AuthorFeed(ctx context.Context, base, actor string, limit int, cursor string) (*FeedResponse, error) {
	var response FeedResponse
	if err := c.GetJSON(ctx, AuthorFeedURL(base, actor, limit, cursor), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateSession exchanges identifier and app password for a session
func (c *Client) CreateSession(ctx context.Context, base, identifier, password string) (*SessionResponse, error) {
	body := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	var response SessionResponse
	if err := c.PostJSON(ctx, CreateSessionURL(base), body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
