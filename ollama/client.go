package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/laydros/bookmarks-local-ai/embedding"
)

// Defaults for Config fields left zero.
const (
	DefaultBaseURL       = "http://localhost:11434"
	DefaultEmbedModel    = "nomic-embed-text"
	DefaultGenerateModel = "llama3.1:8b"
)

// Config tunes the client. Zero values select the defaults.
type Config struct {
	BaseURL       string
	EmbedModel    string
	GenerateModel string

	// HTTPClient overrides the default retrying client, mainly for
	// tests.
	HTTPClient *http.Client
}

// Client is an HTTP client for a local Ollama server. It is safe for
// concurrent use.
type Client struct {
	baseURL       string
	embedModel    string
	generateModel string
	http          *http.Client
}

// New creates a Client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.GenerateModel == "" {
		cfg.GenerateModel = DefaultGenerateModel
	}
	if cfg.HTTPClient == nil {
		rc := retryablehttp.NewClient()
		rc.RetryMax = 3
		rc.RetryWaitMax = 5 * time.Second
		rc.Logger = nil
		cfg.HTTPClient = rc.StandardClient()
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		embedModel:    cfg.EmbedModel,
		generateModel: cfg.GenerateModel,
		http:          cfg.HTTPClient,
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the embedding vector for text. Failures wrap
// embedding.ErrUnavailable.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var res embedResponse
	if err := c.post(ctx, "/api/embed", embedRequest{Model: c.embedModel, Input: text}, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", embedding.ErrUnavailable, err)
	}
	if len(res.Embeddings) == 0 || len(res.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: empty embedding from model %s", embedding.ErrUnavailable, c.embedModel)
	}
	return res.Embeddings[0], nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate runs a completion prompt and returns the model's full
// response text. Failures wrap embedding.ErrUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var res generateResponse
	if err := c.post(ctx, "/api/generate", generateRequest{Model: c.generateModel, Prompt: prompt}, &res); err != nil {
		return "", fmt.Errorf("%w: %v", embedding.ErrUnavailable, err)
	}
	return res.Response, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
