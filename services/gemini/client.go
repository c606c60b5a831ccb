package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// BaseURL is the Gemini generative language API base URL
	BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the default model for generation
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds a single generation request
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrMissingAPIKey means the client was built without credentials
	ErrMissingAPIKey = errors.New("gemini: API key not configured")
	// ErrRateLimited means the upstream quota was exhausted
	ErrRateLimited = errors.New("gemini: quota exceeded")
	// ErrEmptyResponse means the API returned no candidates
	ErrEmptyResponse = errors.New("gemini: no candidates returned")
)

// Generator is the interface the services consume. The concrete Client
// talks to the hosted API; tests substitute a fake.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, options ...Option) (string, error)
}

// Client handles Gemini generateContent API calls
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the Gemini client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new Gemini API client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// generationConfig mirrors the API's generationConfig object
type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Option is a function that modifies the generation request
type Option func(*generateRequest)

// WithGenerationConfig sets the sampling parameters for the request
func WithGenerationConfig(temperature float64, topK int, topP float64, maxOutputTokens int) Option {
	return func(req *generateRequest) {
		req.GenerationConfig = &generationConfig{
			Temperature:     temperature,
			TopK:            topK,
			TopP:            topP,
			MaxOutputTokens: maxOutputTokens,
		}
	}
}

// GenerateContent sends a single-prompt generation request and returns
// the first candidate's text.
func (c *Client) GenerateContent(ctx context.Context, prompt string, options ...Option) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	req := generateRequest{
		Contents: []content{
			{Parts: []contentPart{{Text: prompt}}},
		},
	}

	// Apply options
	for _, opt := range options {
		opt(&req)
	}

	return c.sendRequest(ctx, req)
}

// sendRequest performs the actual API request
func (c *Client) sendRequest(ctx context.Context, req generateRequest) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	// Perform request
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// Check for errors
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", ErrRateLimited
		}

		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	// Parse response
	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}
