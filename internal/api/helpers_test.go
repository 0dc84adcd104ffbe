package api_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/blagoySimandov/teachermail/internal/api"
	"github.com/blagoySimandov/teachermail/internal/auth"
	"github.com/blagoySimandov/teachermail/internal/metrics"
	"github.com/blagoySimandov/teachermail/internal/services"
	"github.com/blagoySimandov/teachermail/internal/user"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const (
	testAccountHeader = "X-Test-Account"
	testOrigin        = "http://localhost:3000"
)

// headerProvider authenticates any request carrying testAccountHeader.
type headerProvider struct{}

func (headerProvider) Authenticate(r *http.Request) (*auth.Identity, error) {
	account := r.Header.Get(testAccountHeader)
	if account == "" {
		return nil, auth.ErrNoCredentials
	}
	return &auth.Identity{AccountID: account, Email: account + "@example.com"}, nil
}

type fakeAIClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeAIClient) Complete(ctx context.Context, messages []services.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, m := range messages {
		f.prompts = append(f.prompts, m.Content)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeAIClient) Model() string { return "fake-model" }

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

type testServer struct {
	handler http.Handler
	repo    *user.MemoryRepository
	ai      *fakeAIClient
	service *user.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := user.NewMemoryRepository(clockwork.NewFakeClock())
	service := user.NewUserService(repo, 5)
	resolver := user.NewSessionResolver(headerProvider{}, service)
	ai := &fakeAIClient{reply: "Dear Ms. Smith, ..."}

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	generator, err := services.NewEmailGenerator(ai, service, services.WithObserver(m))
	require.NoError(t, err)

	handler := api.SetupRoutes(api.Handlers{
		Generate: api.NewGenerateHandler(generator, resolver),
		User:     api.NewUserHandler(),
		Health:   api.NewHealthHandler(repo),
		Metrics:  metrics.Handler(reg),
	}, resolver, m, testOrigin)

	return &testServer{handler: handler, repo: repo, ai: ai, service: service}
}

// seedUser creates the account's user and sets its balance.
func (s *testServer) seedUser(t *testing.T, account string, tokens int) string {
	t.Helper()
	u, err := s.service.GetOrCreate(context.Background(), account, account+"@example.com")
	require.NoError(t, err)
	require.NoError(t, s.repo.SetTokens(u.ID, tokens))
	return u.ID
}

func (s *testServer) balance(t *testing.T, userID string) int {
	t.Helper()
	u, err := s.repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	return u.Tokens
}
