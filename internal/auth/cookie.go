package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// CookieSessionProvider reads identities from a signed cookie session written
// by the sign-in flow.
type CookieSessionProvider struct {
	store sessions.Store
	name  string
}

func NewCookieStore(secret string, maxAge time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func NewCookieSessionProvider(store sessions.Store, name string) *CookieSessionProvider {
	return &CookieSessionProvider{
		store: store,
		name:  name,
	}
}

func (p *CookieSessionProvider) Authenticate(r *http.Request) (*Identity, error) {
	if _, err := r.Cookie(p.name); err != nil {
		return nil, ErrNoCredentials
	}

	session, err := p.store.Get(r, p.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	accountID, ok := session.Values[SessionKeyAccountID].(string)
	if !ok || accountID == "" {
		return nil, fmt.Errorf("%w: session has no account", ErrMissingClaims)
	}
	email, _ := session.Values[SessionKeyEmail].(string)

	return &Identity{
		AccountID: accountID,
		Email:     email,
	}, nil
}

// Save writes identity into the session cookie.
func (p *CookieSessionProvider) Save(w http.ResponseWriter, r *http.Request, identity *Identity) error {
	session, err := p.store.Get(r, p.name)
	if err != nil && session == nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	session.Values[SessionKeyAccountID] = identity.AccountID
	session.Values[SessionKeyEmail] = identity.Email
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
