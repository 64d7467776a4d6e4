package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/azizemirhan/hubcenter/internal/httpclient"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error"`
}

// Ollama calls a local Ollama server's chat endpoint.
type Ollama struct {
	baseURL string
	model   string
	exec    *httpclient.Executor
}

// NewOllama returns a completer for model served at baseURL. A nil exec uses the default retry policy.
func NewOllama(baseURL, model string, exec *httpclient.Executor) *Ollama {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	if exec == nil {
		exec = httpclient.NewExecutor(nil, httpclient.DefaultRetryConfig())
	}
	return &Ollama{baseURL: baseURL, model: model, exec: exec}
}

func (o *Ollama) Name() string { return "ollama" }

// Complete posts prompt as a non-streaming chat request.
func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	endpoint := o.baseURL + "/api/chat"
	resp, err := o.exec.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	text := strings.TrimSpace(out.Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

var _ Completer = (*Ollama)(nil)
