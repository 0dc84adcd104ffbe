package user

import (
	"errors"
	"net/http"

	"github.com/blagoySimandov/teachermail/internal/auth"
	"github.com/blagoySimandov/teachermail/internal/logger"
	"github.com/blagoySimandov/teachermail/internal/logging"
	"github.com/blagoySimandov/teachermail/internal/models"
)

type Resolver interface {
	Resolve(r *http.Request) (*models.User, bool)
}

// SessionResolver maps the credential attached to a request onto a stored
// user. Every failure, from a missing cookie to a database error, resolves to
// anonymous.
type SessionResolver struct {
	provider auth.Provider
	service  Service
}

func NewSessionResolver(provider auth.Provider, service Service) *SessionResolver {
	return &SessionResolver{
		provider: provider,
		service:  service,
	}
}

func (s *SessionResolver) Resolve(r *http.Request) (*models.User, bool) {
	ctx := r.Context()

	identity, err := s.provider.Authenticate(r)
	if err != nil {
		if !errors.Is(err, auth.ErrNoCredentials) {
			logger.Log.Debug("session rejected", "error", err, "trace_id", logging.GetTraceID(ctx))
		}
		return nil, false
	}

	dbUser, err := s.service.GetOrCreate(ctx, identity.AccountID, identity.Email)
	if err != nil {
		logger.Log.Warn("failed to get or create user",
			"error", err,
			"account_id", identity.AccountID,
			"trace_id", logging.GetTraceID(ctx),
		)
		return nil, false
	}

	logging.EnrichUser(ctx, dbUser.ID, dbUser.AccountID)
	return dbUser, true
}
