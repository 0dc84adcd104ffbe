package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "teachermail_session"

func newTestCookieProvider() *CookieSessionProvider {
	store := NewCookieStore("test-secret-key-32-bytes-long!!!", time.Hour, false)
	return NewCookieSessionProvider(store, testCookieName)
}

func sessionCookie(t *testing.T, p *CookieSessionProvider, identity *Identity) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, p.Save(rec, httptest.NewRequest("GET", "/", nil), identity))

	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatal("session cookie not written")
	return nil
}

func TestCookieSession_RoundTrip(t *testing.T) {
	p := newTestCookieProvider()
	cookie := sessionCookie(t, p, &Identity{AccountID: "acct-1", Email: "student@example.com"})

	req := httptest.NewRequest("POST", "/api/generate", nil)
	req.AddCookie(cookie)

	identity, err := p.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", identity.AccountID)
	assert.Equal(t, "student@example.com", identity.Email)
}

func TestCookieSession_NoCookie(t *testing.T) {
	_, err := newTestCookieProvider().Authenticate(httptest.NewRequest("POST", "/", nil))
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestCookieSession_TamperedCookie(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "not-a-signed-value"})

	_, err := newTestCookieProvider().Authenticate(req)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCookieSession_SignedByOtherSecret(t *testing.T) {
	other := NewCookieSessionProvider(
		NewCookieStore("another-secret-key-32-bytes-long!", time.Hour, false),
		testCookieName,
	)
	cookie := sessionCookie(t, other, &Identity{AccountID: "acct-1"})

	req := httptest.NewRequest("POST", "/", nil)
	req.AddCookie(cookie)

	_, err := newTestCookieProvider().Authenticate(req)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
