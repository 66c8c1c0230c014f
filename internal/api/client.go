// Package api is the HTTP gateway to the messaging backend. A single
// shared Client carries the bearer token on every request, surfaces the
// request lifecycle through the feedback center, and forces a logout
// when the backend rejects the token. The gateway never swallows an
// error: it augments (notice, possible session clear) and returns it,
// so callers can do their own local recovery on top.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mfellner/pinnwand/internal/feedback"
	"github.com/mfellner/pinnwand/internal/session"
)

const loadingText = "Wird geladen …"

// Client is the shared HTTP gateway. Construct exactly one per process
// with NewClient and pass it to every screen.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *session.Store
	notices    *feedback.Center
	logger     *zap.Logger

	// onAuthFailure runs after a 401 cleared the session; the app uses
	// it to navigate to the login screen.
	onAuthFailure func()
}

// NewClient creates the gateway. The baseURL should include the API
// prefix (e.g. http://host/api).
func NewClient(baseURL string, sessions *session.Store, notices *feedback.Center, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		sessions: sessions,
		notices:  notices,
		logger:   logger,
	}
}

// OnAuthFailure registers the hook invoked when a request comes back
// 401. The session is already cleared when the hook runs.
func (c *Client) OnAuthFailure(fn func()) {
	c.onAuthFailure = fn
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// do builds the request, attaches auth, runs the notice lifecycle, and
// decodes the response. Every in-flight request triggers its own
// loading/clear cycle; the notice slot itself is last-write-wins.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, method, path, result)
}

// send dispatches a fully built request and handles the shared inbound
// path. Multipart uploads come through here too.
func (c *Client) send(req *http.Request, method, path string, result interface{}) error {
	if token, err := c.sessions.Token(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.notices.Loading(loadingText)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.notices.Clear()
		c.notices.Error(fallbackErrorText)
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	c.notices.Clear()
	if readErr != nil {
		c.notices.Error(fallbackErrorText)
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return c.failAuth(method, path, respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env errorEnvelope
		_ = json.Unmarshal(respBody, &env)
		text := env.noticeText()
		c.notices.Error(text)
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    text,
		}
	}

	// Optional success message from the backend.
	var env errorEnvelope
	if json.Unmarshal(respBody, &env) == nil && env.Message != "" {
		c.notices.Success(env.Message)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}

// failAuth handles a 401: session gone, back to login, error surfaced
// and still returned to the caller.
func (c *Client) failAuth(method, path string, respBody []byte) error {
	if err := c.sessions.Clear(); err != nil {
		c.logger.Error("clearing session after 401", zap.Error(err))
	}

	var env errorEnvelope
	_ = json.Unmarshal(respBody, &env)
	c.notices.Error(env.noticeText())

	c.logger.Warn("session rejected",
		zap.String("method", method),
		zap.String("path", path),
	)

	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
	return &AuthError{Method: method, Path: path}
}

// postMultipart uploads files under the "files[]" field together with
// the given form values.
func (c *Client) postMultipart(ctx context.Context, path string, values map[string]string, filePaths []string, result interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range values {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("writing form field %q: %w", key, err)
		}
	}

	for _, fp := range filePaths {
		f, err := os.Open(fp)
		if err != nil {
			return fmt.Errorf("opening attachment %s: %w", fp, err)
		}
		part, err := writer.CreateFormFile("files[]", filepath.Base(fp))
		if err != nil {
			f.Close()
			return fmt.Errorf("creating form file for %s: %w", fp, err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return fmt.Errorf("copying attachment %s: %w", fp, err)
		}
		f.Close()
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, http.MethodPost, path, result)
}

// encodeQuery renders non-empty values as a query string, including the
// leading "?". Returns "" when all values are empty.
func encodeQuery(values map[string]string) string {
	q := url.Values{}
	for key, value := range values {
		if value != "" {
			q.Set(key, value)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
