package auth

import (
	"errors"
	"net/http"
)

var (
	ErrNoCredentials = errors.New("no credentials")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingClaims = errors.New("missing required claims")
)

// Identity is what an identity provider vouches for: an opaque external
// account reference and, when known, an email address.
type Identity struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
}

// Provider extracts an Identity from the credential material on a request.
// It returns ErrNoCredentials when the request carries none of the material
// the provider understands.
type Provider interface {
	Authenticate(r *http.Request) (*Identity, error)
}

// Chain tries each provider in order and returns the first identity found.
type Chain []Provider

func (c Chain) Authenticate(r *http.Request) (*Identity, error) {
	lastErr := ErrNoCredentials
	for _, p := range c {
		identity, err := p.Authenticate(r)
		if err == nil {
			return identity, nil
		}
		if !errors.Is(err, ErrNoCredentials) {
			lastErr = err
		}
	}
	return nil, lastErr
}
