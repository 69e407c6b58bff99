// Package llm provides the Ollama generation adapter and availability probe.
// Clean Architecture: Adapter implementing ports.GenerationService.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxErrorBodyBytes bounds how much of an error response is read for logging.
const maxErrorBodyBytes = 512

// Options are the fixed generation parameters sent with every chat call.
type Options struct {
	Temperature float64
	TopP        float64
	TopK        int
	NumPredict  int
}

// OllamaClient implements ports.GenerationService using the Ollama chat API.
type OllamaClient struct {
	baseURL string
	model   string
	opts    Options
	client  *http.Client
	logger  *zap.Logger
}

// NewOllamaClient creates a new Ollama chat client. The timeout is generous
// because generation latency is backend-dependent.
func NewOllamaClient(baseURL, model string, opts Options, timeout time.Duration, logger *zap.Logger) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "mistral"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{
		baseURL: baseURL,
		model:   model,
		opts:    opts,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// chatMessage is one turn in the Ollama chat request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatOptions carries the model sampling parameters.
type chatOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
	NumPredict  int     `json:"num_predict"`
}

// chatRequest is the Ollama /api/chat request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Options  chatOptions   `json:"options"`
	Stream   bool          `json:"stream"`
}

// chatResponse is the non-streaming /api/chat response body.
type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Model returns the configured model identifier.
func (c *OllamaClient) Model() string {
	return c.model
}

// Chat sends the prompt and returns the trimmed generated text.
// Streaming is disabled so a single JSON payload comes back.
func (c *OllamaClient) Chat(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Options: chatOptions{
			Temperature: c.opts.Temperature,
			TopP:        c.opts.TopP,
			TopK:        c.opts.TopK,
			NumPredict:  c.opts.NumPredict,
		},
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Error("Ollama chat returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.String("model", c.model),
			zap.String("body", strings.TrimSpace(string(body))))
		return "", fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return strings.TrimSpace(chatResp.Message.Content), nil
}
