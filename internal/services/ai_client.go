package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrEmptyCompletion = errors.New("provider returned no completion")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IAIClient sends a conversation to a text-generation model and returns the
// text of the first completion.
type IAIClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Model() string
}

// UsageTracker receives the provider-reported token counts of each call.
type UsageTracker interface {
	AddTokenUsage(ctx context.Context, model string, promptTokens, completionTokens int)
}

type GeminiAIClient struct {
	client  *genai.Client
	tracker UsageTracker
	model   string
}
type GeminiAIClientFuncOptions = func(client *GeminiAIClient) error

func NewGeminiAIClient(ctx context.Context, apiKey string, opts ...GeminiAIClientFuncOptions) (*GeminiAIClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	geminiai := GeminiAIClient{
		client: client,
		model:  "gemini-2.0-flash",
	}
	err = applyFuncOptions(&geminiai, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}
	return &geminiai, nil
}

func WithModel(model string) GeminiAIClientFuncOptions {
	return func(client *GeminiAIClient) error {
		if model == "" {
			return errors.New("model must not be empty")
		}
		client.model = model
		return nil
	}
}

func WithUsageTracker(tracker UsageTracker) GeminiAIClientFuncOptions {
	return func(client *GeminiAIClient) error {
		client.tracker = tracker
		return nil
	}
}

func (g *GeminiAIClient) Model() string {
	return g.model
}

func (g *GeminiAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	contents, system := toGeminiContents(messages)

	var config *genai.GenerateContentConfig
	if system != nil {
		config = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(result.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}

	g.trackUsage(ctx, Deref(result.UsageMetadata))

	return result.Text(), nil
}

func (g *GeminiAIClient) trackUsage(ctx context.Context, um genai.GenerateContentResponseUsageMetadata) {
	if g.tracker == nil {
		return
	}
	g.tracker.AddTokenUsage(ctx, g.model, int(um.PromptTokenCount), int(um.CandidatesTokenCount))
}

// toGeminiContents maps chat roles onto Gemini's user/model turns. System
// messages are folded into a single system instruction.
func toGeminiContents(messages []Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   *genai.Content
	)
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			if system == nil {
				system = genai.NewContentFromText(m.Content, genai.RoleUser)
			} else {
				system.Parts = append(system.Parts, genai.NewPartFromText(m.Content))
			}
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, system
}
