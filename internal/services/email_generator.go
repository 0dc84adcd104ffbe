package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blagoySimandov/teachermail/internal/logging"
	"github.com/blagoySimandov/teachermail/internal/models"
)

var (
	ErrOutOfTokens       = errors.New("out of tokens")
	ErrMissingParameters = errors.New("missing required parameters")
	ErrGenerationFailed  = errors.New("generation failed")
)

const (
	OutcomeSuccess           = "success"
	OutcomeOutOfTokens       = "out_of_tokens"
	OutcomeMissingParameters = "missing_parameters"
	OutcomeProviderError     = "provider_error"
	OutcomeDebitError        = "debit_error"
)

type TokenDebiter interface {
	DecrementTokens(ctx context.Context, userID string) error
}

type GenerationObserver interface {
	ObserveGeneration(outcome string)
	ObserveProviderLatency(model string, d time.Duration)
}

type Draft struct {
	Email           string
	RemainingTokens int
}

// EmailGenerator turns a validated form into a draft and charges one token
// for it.
type EmailGenerator struct {
	client   IAIClient
	prompts  IEmailPromptBuilder
	debiter  TokenDebiter
	observer GenerationObserver
}

type EmailGeneratorOption = func(g *EmailGenerator) error

func NewEmailGenerator(client IAIClient, debiter TokenDebiter, opts ...EmailGeneratorOption) (*EmailGenerator, error) {
	g := &EmailGenerator{
		client:  client,
		prompts: NewEmailPromptBuilder(),
		debiter: debiter,
	}
	if err := applyFuncOptions(g, opts...); err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}
	return g, nil
}

func WithPromptBuilder(prompts IEmailPromptBuilder) EmailGeneratorOption {
	return func(g *EmailGenerator) error {
		g.prompts = prompts
		return nil
	}
}

func WithObserver(observer GenerationObserver) EmailGeneratorOption {
	return func(g *EmailGenerator) error {
		g.observer = observer
		return nil
	}
}

// Generate checks the balance, then the form, calls the provider once and
// takes one token after a usable draft comes back. RemainingTokens is derived
// from the balance user was resolved with, not re-read from storage.
//
// Balance check and decrement are not atomic together: concurrent requests
// for the same user may both pass the check.
func (g *EmailGenerator) Generate(ctx context.Context, user *models.User, req models.GenerationRequest) (*Draft, error) {
	if !user.HasTokens() {
		g.finish(ctx, OutcomeOutOfTokens)
		return nil, ErrOutOfTokens
	}

	if !req.Complete() {
		g.finish(ctx, OutcomeMissingParameters)
		return nil, ErrMissingParameters
	}

	prompt := g.prompts.Build(req)

	start := time.Now()
	email, err := g.client.Complete(ctx, []Message{{Role: RoleUser, Content: prompt}})
	elapsed := time.Since(start)
	logging.EnrichProvider(ctx, g.client.Model(), elapsed)
	if g.observer != nil {
		g.observer.ObserveProviderLatency(g.client.Model(), elapsed)
	}
	if err == nil && strings.TrimSpace(email) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		logging.EnrichError(ctx, err, "provider")
		g.finish(ctx, OutcomeProviderError)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	if err := g.debiter.DecrementTokens(ctx, user.ID); err != nil {
		logging.EnrichError(ctx, err, "debit")
		g.finish(ctx, OutcomeDebitError)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	remaining := user.Tokens - 1
	logging.EnrichTokens(ctx, user.Tokens, remaining)
	g.finish(ctx, OutcomeSuccess)

	return &Draft{
		Email:           email,
		RemainingTokens: remaining,
	}, nil
}

func (g *EmailGenerator) finish(ctx context.Context, outcome string) {
	logging.EnrichOutcome(ctx, outcome)
	if g.observer != nil {
		g.observer.ObserveGeneration(outcome)
	}
}

// UserMessage renders a generation error as the text shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrOutOfTokens):
		return "You're out of tokens!"
	case errors.Is(err, ErrMissingParameters):
		return "Missing required parameters"
	default:
		return "Error."
	}
}
