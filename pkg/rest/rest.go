// Package rest implements the HTTP plumbing shared by the identity-service and
// vehicle-gateway clients. It bounds response sizes, tags every request with a
// correlation ID, and maps non-2xx responses to classified errors. Retry policy
// belongs to callers.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/renault-community/renault-command/internal/log"
)

// MaxResponseLength caps the byte-length of upstream responses the client will read.
const MaxResponseLength = 100000

// ErrResponseTooLong indicates the upstream response exceeded MaxResponseLength.
var ErrResponseTooLong = errors.New("response exceeds maximum length")

// ReadWithContext behaves as io.ReadFull, but aborts between chunks if ctx expires.
// It treats io.EOF as success and returns the bytes read so far.
func ReadWithContext(ctx context.Context, r io.Reader, p []byte) ([]byte, error) {
	bytesRead := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		n, err := r.Read(p[bytesRead:])
		bytesRead += n
		if err == io.EOF {
			return p[:bytesRead], nil
		}
		if err != nil {
			return p[:bytesRead], err
		}
		if bytesRead == len(p) {
			return p[:bytesRead], nil
		}
	}
}

// HTTPError wraps a non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return http.StatusText(e.StatusCode)
	}
	return http.StatusText(e.StatusCode) + ": " + e.Body
}

// Unauthorized returns true if the upstream rejected the request's token. The vehicle
// gateway answers 401 when the id token has expired; 403 means the account lacks a
// feature and obtaining a fresh token will not help.
func (e *HTTPError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusServiceUnavailable ||
		e.StatusCode == http.StatusGatewayTimeout ||
		e.StatusCode == http.StatusRequestTimeout
}

// Connection sends requests to a single upstream host.
type Connection struct {
	// UserAgent is sent with every request.
	UserAgent string

	client  http.Client
	base    string
	headers map[string]string
}

// NewConnection creates a Connection for the host at base (scheme included). The
// static headers are sent with every request; the vehicle gateway requires its API
// key here.
func NewConnection(base, userAgent string, headers map[string]string) *Connection {
	conn := Connection{
		UserAgent: userAgent,
		base:      strings.TrimSuffix(base, "/"),
		headers:   make(map[string]string, len(headers)),
	}
	for key, value := range headers {
		conn.headers[key] = value
	}
	return &conn
}

// Base returns the upstream base URL the Connection was created with.
func (c *Connection) Base() string {
	return c.base
}

// Get issues a GET request. Per-call headers override the Connection's static
// headers.
func (c *Connection) Get(ctx context.Context, path string, query url.Values, headers map[string]string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, path, query, "", nil, headers)
}

// PostJSON marshals payload and issues a POST request.
func (c *Connection) PostJSON(ctx context.Context, path string, query url.Values, payload interface{}, headers map[string]string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	log.Debug("Sending request to %s/%s: %s", c.base, path, body)
	return c.send(ctx, http.MethodPost, path, query, "application/json", body, headers)
}

// PostForm issues a form-encoded POST request. The form is not logged; identity
// endpoints carry credentials in it.
func (c *Connection) PostForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.send(ctx, http.MethodPost, path, nil, "application/x-www-form-urlencoded", []byte(form.Encode()), nil)
}

func (c *Connection) send(ctx context.Context, method, path string, query url.Values, contentType string, payload []byte, headers map[string]string) ([]byte, error) {
	endpoint := c.base + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	request.Header.Set("User-Agent", c.UserAgent)
	request.Header.Set("Accept", "*/*")
	request.Header.Set("X-Request-Id", requestID)
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	log.Debug("Sending %s %s [%s]", method, endpoint, requestID)
	result, err := c.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()

	body := make([]byte, MaxResponseLength+1)
	body, err = ReadWithContext(ctx, result.Body, body)
	if err != nil {
		return nil, err
	}
	if len(body) == MaxResponseLength+1 {
		return nil, ErrResponseTooLong
	}

	log.Debug("Server returned %d for [%s]: %s", result.StatusCode, requestID, body)
	if result.StatusCode >= 200 && result.StatusCode < 300 {
		return body, nil
	}
	return nil, &HTTPError{StatusCode: result.StatusCode, Body: string(body)}
}
