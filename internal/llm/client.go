// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the language-model collaborators: a plain HTTP
// client for an OpenAI-compatible chat completions API plus the typed
// wrappers (relevance judge, query reformulator) the pipeline consumes.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// Client abstracts the language model so tests can supply a mock. One
// prompt in, one completion out.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// groqAPIURL is the Groq chat completions endpoint. Package-level var
// for test substitution.
var groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqClient calls the Groq API, which speaks the OpenAI chat
// completions protocol.
type GroqClient struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	MaxRetries  int
	Client      *http.Client
}

// NewGroqClient builds a client from config.
func NewGroqClient(cfg types.AIConfig, httpClient *http.Client) *GroqClient {
	return &GroqClient{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		MaxRetries:  cfg.MaxRetries,
		Client:      httpClient,
	}
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

// chatMessage is a single message in the conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from the chat completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Complete sends the prompt and returns the first choice's content.
// Transient failures are retried with exponential backoff.
func (g *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := g.complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (g *GroqClient) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       g.Model,
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, groqAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Groq API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Groq API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Groq response: %w", err)
	}
	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("Groq API returned no choices")
	}
	return cResp.Choices[0].Message.Content, nil
}
