package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/terra-clan/learning-roadmaps/internal/models"
)

// ErrNotFound is returned when the requested roadmap, phase or topic does
// not exist
var ErrNotFound = errors.New("not found")

// Client is a Go SDK for the learning-roadmaps API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAPIKey sets the admin API key sent with every request
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// NewClient creates a new learning-roadmaps client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is an error envelope returned by the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s (HTTP %d)", e.Code, e.Message, e.Status)
}

// Is lets errors.Is match ErrNotFound on 404 responses
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// RoadmapSummary is a roadmap as listed on the landing page
type RoadmapSummary struct {
	models.CatalogEntry
	Href           string `json:"href,omitempty"`
	Navigable      bool   `json:"navigable"`
	ContentPending bool   `json:"contentPending"`
	PhaseCount     int    `json:"phaseCount"`
	TopicCount     int    `json:"topicCount"`
}

// RoadmapDetail is a roadmap with its phases and counts
type RoadmapDetail = models.RoadmapDetail

// SearchHit is one search result
type SearchHit struct {
	Kind    string `json:"kind"`
	Slug    string `json:"slug"`
	PhaseID string `json:"phaseId,omitempty"`
	TopicID string `json:"topicId,omitempty"`
	Title   string `json:"title"`
}

// ReloadResult describes a content reload triggered through the admin API
type ReloadResult struct {
	Revision         string `json:"revision"`
	PreviousRevision string `json:"previousRevision"`
	Stats            struct {
		Roadmaps int `json:"roadmaps"`
		Phases   int `json:"phases"`
		Topics   int `json:"topics"`
	} `json:"stats"`
	Issues    int  `json:"issues"`
	HasErrors bool `json:"hasErrors"`
}

// ListRoadmaps retrieves the catalog, optionally filtered by tag
func (c *Client) ListRoadmaps(ctx context.Context, tag string) ([]RoadmapSummary, error) {
	path := "/api/v1/roadmaps"
	if tag != "" {
		path += "?tag=" + url.QueryEscape(tag)
	}

	var data struct {
		Roadmaps []RoadmapSummary `json:"roadmaps"`
		Total    int              `json:"total"`
	}
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return data.Roadmaps, nil
}

// GetRoadmap retrieves a roadmap and its phases
func (c *Client) GetRoadmap(ctx context.Context, slug string) (*RoadmapDetail, error) {
	var data RoadmapDetail
	if err := c.get(ctx, "/api/v1/roadmaps/"+url.PathEscape(slug), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPhase retrieves one phase of a roadmap
func (c *Client) GetPhase(ctx context.Context, slug, phaseID string) (*models.Phase, error) {
	path := fmt.Sprintf("/api/v1/roadmaps/%s/phases/%s", url.PathEscape(slug), url.PathEscape(phaseID))

	var data models.Phase
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTopic retrieves one topic of a phase
func (c *Client) GetTopic(ctx context.Context, slug, phaseID, topicID string) (*models.Topic, error) {
	path := fmt.Sprintf("/api/v1/roadmaps/%s/phases/%s/topics/%s",
		url.PathEscape(slug), url.PathEscape(phaseID), url.PathEscape(topicID))

	var data models.Topic
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Search finds roadmaps, phases and topics by title. limit <= 0 uses the
// server default.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	params := url.Values{"q": {query}}
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}

	var data struct {
		Hits  []SearchHit `json:"hits"`
		Total int         `json:"total"`
	}
	if err := c.get(ctx, "/api/v1/search?"+params.Encode(), &data); err != nil {
		return nil, err
	}
	return data.Hits, nil
}

// Reload asks the server to rebuild its registry. Requires WithAPIKey.
func (c *Client) Reload(ctx context.Context) (*ReloadResult, error) {
	var data ReloadResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/admin/reload", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

func (c *Client) get(ctx context.Context, path string, data interface{}) error {
	return c.call(ctx, http.MethodGet, path, data)
}

// call performs a request and decodes the envelope's data into data
func (c *Client) call(ctx context.Context, method, path string, data interface{}) error {
	status, body, err := c.doRequest(ctx, method, path, nil)
	if err != nil {
		return err
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		if status >= 400 {
			return &APIError{Status: status, Code: "http_error", Message: string(body)}
		}
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success || status >= 400 {
		apiErr := &APIError{Status: status, Code: "unknown", Message: http.StatusText(status)}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return apiErr
	}

	if data == nil {
		return nil
	}
	if err := json.Unmarshal(result.Data, data); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}
