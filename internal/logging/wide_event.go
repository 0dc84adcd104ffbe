package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/blagoySimandov/teachermail/internal/logger"
	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const (
	contextKeyWideEvent contextKey = "wide_event"
	contextKeyTraceID   contextKey = "trace_id"
)

// WideEvent is one structured log entry describing a whole request. Handlers
// and services enrich it as the request moves through them; the API
// middleware emits it once the response is written.
type WideEvent struct {
	TraceID   string    `json:"trace_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`

	HTTPMethod     string `json:"http_method,omitempty"`
	HTTPPath       string `json:"http_path,omitempty"`
	HTTPStatusCode int    `json:"http_status_code,omitempty"`
	HTTPDurationMs int64  `json:"http_duration_ms,omitempty"`

	UserID    string `json:"user_id,omitempty"`
	AccountID string `json:"account_id,omitempty"`

	// Generation context
	Outcome            string `json:"outcome,omitempty"`
	Model              string `json:"model,omitempty"`
	PriorTokens        *int   `json:"prior_tokens,omitempty"`
	RemainingTokens    *int   `json:"remaining_tokens,omitempty"`
	ProviderDurationMs int64  `json:"provider_duration_ms,omitempty"`

	Error          string `json:"error,omitempty"`
	ErrorStage     string `json:"error_stage,omitempty"`
	PanicRecovered bool   `json:"panic_recovered,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

func NewWideEvent(eventType string) *WideEvent {
	return &WideEvent{
		TraceID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// WithContext attaches a WideEvent to a context
func WithContext(ctx context.Context, event *WideEvent) context.Context {
	ctx = context.WithValue(ctx, contextKeyWideEvent, event)
	ctx = context.WithValue(ctx, contextKeyTraceID, event.TraceID)
	return ctx
}

// FromContext retrieves the WideEvent from a context
func FromContext(ctx context.Context) *WideEvent {
	if event, ok := ctx.Value(contextKeyWideEvent).(*WideEvent); ok {
		return event
	}
	return nil
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(contextKeyTraceID).(string); ok {
		return traceID
	}
	return ""
}

// Enrich helpers are no-ops when the context carries no event.

func EnrichHTTP(ctx context.Context, method, path string) {
	if event := FromContext(ctx); event != nil {
		event.HTTPMethod = method
		event.HTTPPath = path
	}
}

func EnrichHTTPStatus(ctx context.Context, statusCode int) {
	if event := FromContext(ctx); event != nil {
		event.HTTPStatusCode = statusCode
	}
}

func EnrichHTTPDuration(ctx context.Context, duration time.Duration) {
	if event := FromContext(ctx); event != nil {
		event.HTTPDurationMs = duration.Milliseconds()
	}
}

func EnrichUser(ctx context.Context, userID, accountID string) {
	if event := FromContext(ctx); event != nil {
		event.UserID = userID
		event.AccountID = accountID
	}
}

func EnrichOutcome(ctx context.Context, outcome string) {
	if event := FromContext(ctx); event != nil {
		event.Outcome = outcome
	}
}

func EnrichTokens(ctx context.Context, prior, remaining int) {
	if event := FromContext(ctx); event != nil {
		event.PriorTokens = &prior
		event.RemainingTokens = &remaining
	}
}

func EnrichProvider(ctx context.Context, model string, duration time.Duration) {
	if event := FromContext(ctx); event != nil {
		event.Model = model
		event.ProviderDurationMs = duration.Milliseconds()
	}
}

func EnrichError(ctx context.Context, err error, stage string) {
	if event := FromContext(ctx); event != nil {
		if err != nil {
			event.Error = err.Error()
			event.ErrorStage = stage
		}
	}
}

func EnrichPanic(ctx context.Context) {
	if event := FromContext(ctx); event != nil {
		event.PanicRecovered = true
	}
}

func EnrichMetadata(ctx context.Context, key string, value any) {
	if event := FromContext(ctx); event != nil {
		event.Metadata[key] = value
	}
}

// Emit outputs the WideEvent as a structured log
func Emit(ctx context.Context) {
	event := FromContext(ctx)
	if event == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("trace_id", event.TraceID),
		slog.String("event_type", event.EventType),
		slog.Time("timestamp", event.Timestamp),
	}

	if event.HTTPMethod != "" {
		attrs = append(attrs, slog.String("http_method", event.HTTPMethod))
	}
	if event.HTTPPath != "" {
		attrs = append(attrs, slog.String("http_path", event.HTTPPath))
	}
	if event.HTTPStatusCode != 0 {
		attrs = append(attrs, slog.Int("http_status_code", event.HTTPStatusCode))
	}
	attrs = append(attrs, slog.Int64("http_duration_ms", event.HTTPDurationMs))

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.AccountID != "" {
		attrs = append(attrs, slog.String("account_id", event.AccountID))
	}

	if event.Outcome != "" {
		attrs = append(attrs, slog.String("outcome", event.Outcome))
	}
	if event.Model != "" {
		attrs = append(attrs, slog.String("model", event.Model))
		attrs = append(attrs, slog.Int64("provider_duration_ms", event.ProviderDurationMs))
	}
	if event.PriorTokens != nil {
		attrs = append(attrs, slog.Int("prior_tokens", *event.PriorTokens))
	}
	if event.RemainingTokens != nil {
		attrs = append(attrs, slog.Int("remaining_tokens", *event.RemainingTokens))
	}

	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if event.ErrorStage != "" {
		attrs = append(attrs, slog.String("error_stage", event.ErrorStage))
	}
	if event.PanicRecovered {
		attrs = append(attrs, slog.Bool("panic_recovered", event.PanicRecovered))
	}

	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	level := slog.LevelInfo
	if event.Error != "" || event.PanicRecovered || event.HTTPStatusCode >= 500 {
		level = slog.LevelError
	}

	logger.Log.LogAttrs(ctx, level, "wide_event", attrs...)
}
