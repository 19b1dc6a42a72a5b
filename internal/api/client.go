package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrMissingBaseURL indicates a client constructed without an endpoint.
	ErrMissingBaseURL = errors.New("api: base url is required")

	noOpLogger = zap.NewNop()
)

const defaultRequestTimeout = 30 * time.Second

// APIError is a non-2xx response decoded into a UI-presentable message.
// Callers surface the message string; nothing here is retried.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// ClientConfig describes the dependencies of the REST client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the workspace backend over REST, presenting the bearer
// token on every request. In-flight requests are not aborted when a view
// navigates away; callers guard stale responses with a cancelled flag before
// applying state.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.Mutex
	token string
}

// NewClient constructs the REST client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
		token:   cfg.Token,
	}, nil
}

// SetToken swaps the bearer token, supporting rotation without rebuilding
// the client.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	return c.send(request, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	request, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	if token := c.bearer(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	return request, nil
}

func (c *Client) send(request *http.Request, out any) error {
	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", request.Method, request.URL.Path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		apiErr := &APIError{Status: response.StatusCode}
		var failure struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if decodeErr := json.NewDecoder(response.Body).Decode(&failure); decodeErr == nil {
			if failure.Detail != "" {
				apiErr.Message = failure.Detail
			} else {
				apiErr.Message = failure.Error
			}
		}
		c.logger.Debug("request failed",
			zap.String("method", request.Method),
			zap.String("path", request.URL.Path),
			zap.Int("status", response.StatusCode))
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, response.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
