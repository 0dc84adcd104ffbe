package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/blagoySimandov/teachermail/internal/logging"
	"github.com/blagoySimandov/teachermail/internal/models"
	"github.com/blagoySimandov/teachermail/internal/services"
	"github.com/blagoySimandov/teachermail/internal/user"
)

const (
	methodNotAllowedMessage = "Method not allowed"
	unauthorizedMessage     = "Unauthorized"

	maxGenerateBodyBytes = 64 << 10
)

type Generator interface {
	Generate(ctx context.Context, user *models.User, req models.GenerationRequest) (*services.Draft, error)
}

type GenerateHandler struct {
	generator Generator
	resolver  user.Resolver
}

func NewGenerateHandler(generator Generator, resolver user.Resolver) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		resolver:  resolver,
	}
}

// Generate answers protocol failures with 405/401 and every other outcome,
// business errors included, with 200 and either a draft or an error message.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, methodNotAllowedMessage)
		return
	}

	dbUser, ok := h.resolver.Resolve(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	ctx := r.Context()

	// An unreadable body is treated as an empty form.
	var req models.GenerationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGenerateBodyBytes)).Decode(&req); err != nil {
		logging.EnrichMetadata(ctx, "decode_error", err.Error())
		req = models.GenerationRequest{}
	}

	draft, err := h.generator.Generate(ctx, dbUser, req)
	if err != nil {
		writeError(w, http.StatusOK, services.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, models.GenerationResponse{
		GeneratedEmail:  draft.Email,
		RemainingTokens: draft.RemainingTokens,
	})
}
