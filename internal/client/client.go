package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kelsos/atom-tasks/internal/config"
	"github.com/kelsos/atom-tasks/internal/logger"
)

// Gateway is the set of HTTP verbs the rest of the client needs
type Gateway interface {
	Get(ctx context.Context, endpoint string, params map[string]string, headers http.Header, result interface{}) error
	Post(ctx context.Context, endpoint string, body interface{}, headers http.Header, result interface{}) error
	Put(ctx context.Context, endpoint string, body interface{}, headers http.Header, result interface{}) error
	Patch(ctx context.Context, endpoint string, body interface{}, headers http.Header, result interface{}) error
	Delete(ctx context.Context, endpoint string, headers http.Header, result interface{}) error
}

// HTTPError is returned for responses outside the 2xx range
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatus() int {
	return e.StatusCode
}

func (e *HTTPError) ServerMessage() string {
	return e.Message
}

// APIClient handles all HTTP communication with the task API
type APIClient struct {
	config     *config.Config
	httpClient *http.Client
}

// NewAPIClient creates a new API client with the given configuration
func NewAPIClient(cfg *config.Config) *APIClient {
	return &APIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BuildURL constructs a full URL for the given endpoint
func (c *APIClient) BuildURL(endpoint string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.config.APIURL, "/"), strings.TrimLeft(endpoint, "/"))
}

// Get makes a GET request to the specified endpoint
func (c *APIClient) Get(ctx context.Context, endpoint string, params map[string]string, headers http.Header, result interface{}) error {
	return c.request(ctx, http.MethodGet, BuildURLWithParams(endpoint, params), nil, headers, result)
}

// Post makes a POST request to the specified endpoint
func (c *APIClient) Post(ctx context.Context, endpoint string, body interface{}, headers http.Header, result interface{}) error {
	return c.request(ctx, http.MethodPost, endpoint, body, headers, result)
}

// Put makes a PUT request to the specified endpoint
func (c *APIClient) Put(ctx context.Context, endpoint string, body interface{}, headers http.Header, result interface{}) error {
	return c.request(ctx, http.MethodPut, endpoint, body, headers, result)
}

// Delete makes a DELETE request to the specified endpoint
func (c *APIClient) Delete(ctx context.Context, endpoint string, headers http.Header, result interface{}) error {
	return c.request(ctx, http.MethodDelete, endpoint, nil, headers, result)
}

// Patch makes a PATCH request to the specified endpoint
func (c *APIClient) Patch(ctx context.Context, endpoint string, body interface{}, headers http.Header, result interface{}) error {
	return c.request(ctx, http.MethodPatch, endpoint, body, headers, result)
}

// request is the core HTTP request method
func (c *APIClient) request(ctx context.Context, method, endpoint string, body interface{}, headers http.Header, result interface{}) error {
	url := c.BuildURL(endpoint)
	requestID := uuid.NewString()
	start := time.Now()
	logger.Debug("Starting %s request to %s (request %s)", method, url, requestID)

	var requestBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling request body: %w", err)
		}
		requestBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, requestBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		logger.Error("Request to %s failed after %v: %v", url, elapsed, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	logger.Debug("Request to %s completed in %v with status %d (request %s)", url, elapsed, resp.StatusCode, requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("%s %s: HTTP error %d: %s", method, url, resp.StatusCode, string(bodyBytes))
		return &HTTPError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Message:    serverMessage(bodyBytes),
		}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil && err != io.EOF {
			logger.Error("%s: Error decoding response: %v", url, err)
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// serverMessage extracts the message field of an error envelope, if any
func serverMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Message
}

// BuildURLWithParams properly builds a URL with query parameters
func BuildURLWithParams(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}

	// Parse the endpoint to check for existing query parameters
	parts := strings.SplitN(endpoint, "?", 2)
	baseURL := parts[0]

	values := url.Values{}
	if len(parts) > 1 {
		existingParams, _ := url.ParseQuery(parts[1])
		values = existingParams
	}

	for key, value := range params {
		values.Set(key, value)
	}

	if len(values) > 0 {
		return baseURL + "?" + values.Encode()
	}
	return baseURL
}
