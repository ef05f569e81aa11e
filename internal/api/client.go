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
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// defaultTimeout bounds a single backend call end to end
	defaultTimeout = 15 * time.Second

	// defaultRateLimit caps outbound calls so polling loops and dashboard
	// fan-out cannot hammer the backend
	defaultRateLimit = rate.Limit(10) // requests per second
	defaultRateBurst = 20
)

// Client is an HTTP client for the Freelance Kenya backend API.
// All methods are safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
}

// Option adjusts client construction
type Option func(*Client)

// WithTimeout overrides the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a backend API client for the given base URL
// (e.g. "https://api.freelancekenya.co.ke/api"). Calls are instrumented
// with Prometheus metrics and rate limited client-side.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base URL %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: NewMetricsTransport(nil),
		},
		limiter: rate.NewLimiter(defaultRateLimit, defaultRateBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// endpointURL joins an endpoint path and query onto the base URL
func (c *Client) endpointURL(endpoint string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + endpoint
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// get performs a GET request and decodes the JSON response into out
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(endpoint, query), nil)
	if err != nil {
		return err
	}
	return c.do(req, endpoint, out)
}

// post performs a POST request with a JSON body and decodes the response into out
func (c *Client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(endpoint, nil), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint, out)
}

// postMultipart performs a POST request with multipart form fields and an
// optional file part, decoding the response into out
func (c *Client) postMultipart(ctx context.Context, endpoint string, fields map[string]string, fileField, fileName string, file io.Reader, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("encoding %s form field %q: %w", endpoint, key, err)
		}
	}

	if file != nil {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			return fmt.Errorf("encoding %s file part: %w", endpoint, err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return fmt.Errorf("copying %s file part: %w", endpoint, err)
		}
	}

	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(endpoint, nil), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, endpoint, out)
}

// do executes a prepared request, maps non-2xx responses to *Error, and
// decodes the JSON body into out (when out is non-nil)
func (c *Client) do(req *http.Request, endpoint string, out interface{}) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling backend %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(resp, endpoint)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding backend %s response: %w", endpoint, err)
	}
	return nil
}

// responseError builds a *Error from the backend's {"error": "..."} envelope
func (c *Client) responseError(resp *http.Response, endpoint string) error {
	apiErr := &Error{Status: resp.StatusCode, Endpoint: endpoint}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
	}

	return apiErr
}
