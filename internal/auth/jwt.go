package auth

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type JWTVerifier struct {
	jwks       *keyfunc.JWKS
	keyfunc    jwt.Keyfunc
	parserOpts []jwt.ParserOption
	mu         sync.RWMutex
}

type JWTVerifierOption func(v *JWTVerifier)

func WithAudience(audience string) JWTVerifierOption {
	return func(v *JWTVerifier) {
		if audience != "" {
			v.parserOpts = append(v.parserOpts, jwt.WithAudience(audience))
		}
	}
}

// NewJWTVerifier fetches the key set at jwksURL and keeps it refreshed in the
// background until Close is called.
func NewJWTVerifier(jwksURL string, opts ...JWTVerifierOption) (*JWTVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	v := NewJWTVerifierWithKeyfunc(jwks.Keyfunc, opts...)
	v.jwks = jwks
	return v, nil
}

func NewJWTVerifierWithKeyfunc(kf jwt.Keyfunc, opts ...JWTVerifierOption) *JWTVerifier {
	v := &JWTVerifier{keyfunc: kf}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *JWTVerifier) VerifyToken(tokenString string) (*Identity, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	token, err := jwt.Parse(tokenString, v.keyfunc, v.parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMissingClaims
	}

	accountID, err := claims.GetSubject()
	if err != nil || accountID == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrMissingClaims)
	}

	email, _ := claims["email"].(string)

	return &Identity{
		AccountID: accountID,
		Email:     email,
	}, nil
}

// Authenticate reads an "Authorization: Bearer <jwt>" header.
func (v *JWTVerifier) Authenticate(r *http.Request) (*Identity, error) {
	authHeader := r.Header.Get(authorizationHeader)
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, ErrNoCredentials
	}

	return v.VerifyToken(strings.TrimPrefix(authHeader, bearerPrefix))
}

func (v *JWTVerifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
