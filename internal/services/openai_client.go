package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	tracker    UsageTracker
}
type OpenAIClientFuncOptions = func(client *OpenAIClient) error

func NewOpenAIClient(apiKey string, opts ...OpenAIClientFuncOptions) (*OpenAIClient, error) {
	client := OpenAIClient{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   "gpt-3.5-turbo",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	if err := applyFuncOptions(&client, opts...); err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}
	return &client, nil
}

func WithOpenAIModel(model string) OpenAIClientFuncOptions {
	return func(client *OpenAIClient) error {
		if model == "" {
			return errors.New("model must not be empty")
		}
		client.model = model
		return nil
	}
}

func WithBaseURL(baseURL string) OpenAIClientFuncOptions {
	return func(client *OpenAIClient) error {
		client.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithTimeout bounds a whole provider round trip; zero means no limit.
func WithTimeout(timeout time.Duration) OpenAIClientFuncOptions {
	return func(client *OpenAIClient) error {
		client.httpClient.Timeout = timeout
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) OpenAIClientFuncOptions {
	return func(client *OpenAIClient) error {
		client.httpClient = httpClient
		return nil
	}
}

func WithOpenAIUsageTracker(tracker UsageTracker) OpenAIClientFuncOptions {
	return func(client *OpenAIClient) error {
		client.tracker = tracker
		return nil
	}
}

func (o *OpenAIClient) Model() string {
	return o.model
}

type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (o *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	jsonData, err := json.Marshal(chatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	if o.tracker != nil {
		o.tracker.AddTokenUsage(ctx, o.model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	}

	return completion.Choices[0].Message.Content, nil
}
