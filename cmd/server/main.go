package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blagoySimandov/teachermail/internal/api"
	"github.com/blagoySimandov/teachermail/internal/auth"
	"github.com/blagoySimandov/teachermail/internal/config"
	"github.com/blagoySimandov/teachermail/internal/db"
	"github.com/blagoySimandov/teachermail/internal/logger"
	"github.com/blagoySimandov/teachermail/internal/metrics"
	"github.com/blagoySimandov/teachermail/internal/services"
	"github.com/blagoySimandov/teachermail/internal/user"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		logger.Log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	clock := clockwork.NewRealClock()

	repo, closeRepo, err := newRepository(ctx, cfg, clock)
	if err != nil {
		return err
	}
	defer closeRepo()

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	provider, closeAuth, err := newAuthProvider(cfg)
	if err != nil {
		return err
	}
	defer closeAuth()

	userService := user.NewUserService(repo, cfg.DefaultTokens)
	resolver := user.NewSessionResolver(provider, userService)

	aiClient, err := newAIClient(ctx, cfg, m)
	if err != nil {
		return err
	}

	generator, err := services.NewEmailGenerator(aiClient, userService, services.WithObserver(m))
	if err != nil {
		return fmt.Errorf("failed to create email generator: %w", err)
	}

	router := api.SetupRoutes(api.Handlers{
		Generate: api.NewGenerateHandler(generator, resolver),
		User:     api.NewUserHandler(),
		Health:   api.NewHealthHandler(repo),
		Metrics:  metrics.Handler(reg),
	}, resolver, m, cfg.FEBaseURL)

	// Provider calls can take well over the usual request budget.
	writeTimeout := 15 * time.Second
	if cfg.OpenAITimeout > 0 {
		writeTimeout += cfg.OpenAITimeout
	} else {
		writeTimeout = 0
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Log.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
		defer cancel()

		shutdownErr <- srv.Shutdown(ctx)
	}()

	logger.Log.Info("server starting",
		"addr", cfg.ServerAddr,
		"provider", cfg.GenerationProvider,
		"model", aiClient.Model(),
		"env", cfg.AppEnv,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Log.Info("server stopped")
	return nil
}

func newRepository(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (user.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Log.Warn("DATABASE_URL not set, using in-memory user store")
		return user.NewMemoryRepository(clock), func() {}, nil
	}

	bunDB := db.NewBunPostgresClient(cfg.DatabaseURL)
	repo := user.NewUserRepository(bunDB, clock)
	if err := repo.InitializeDatabase(ctx); err != nil {
		bunDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repo, func() { bunDB.Close() }, nil
}

// newAuthProvider chains every configured credential source: bearer JWT,
// signed cookie session, then Redis-backed session token.
func newAuthProvider(cfg *config.Config) (auth.Provider, func(), error) {
	var (
		chain   auth.Chain
		closers []func()
	)
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.JWKSURL != "" {
		var opts []auth.JWTVerifierOption
		if cfg.JWTAudience != "" {
			opts = append(opts, auth.WithAudience(cfg.JWTAudience))
		}
		verifier, err := auth.NewJWTVerifier(cfg.JWKSURL, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create JWT verifier: %w", err)
		}
		closers = append(closers, verifier.Close)
		chain = append(chain, verifier)
	}

	if cfg.SessionSecret != "" {
		store := auth.NewCookieStore(cfg.SessionSecret, cfg.SessionTokenTTL, !cfg.IsDevelopment())
		chain = append(chain, auth.NewCookieSessionProvider(store, cfg.SessionCookieName))
	}

	if cfg.RedisURL != "" {
		client, err := auth.NewRedisClient(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		chain = append(chain, auth.NewRedisSessionProvider(client, cfg.SessionTokenCookie, cfg.SessionTokenTTL))
	}

	return chain, cleanup, nil
}

func newAIClient(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (services.IAIClient, error) {
	switch cfg.GenerationProvider {
	case config.ProviderGemini:
		client, err := services.NewGeminiAIClient(ctx, cfg.GeminiAPIKey,
			services.WithModel(cfg.GeminiModel),
			services.WithUsageTracker(m),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		client, err := services.NewOpenAIClient(cfg.OpenAIAPIKey,
			services.WithOpenAIModel(cfg.OpenAIModel),
			services.WithBaseURL(cfg.OpenAIBaseURL),
			services.WithTimeout(cfg.OpenAITimeout),
			services.WithOpenAIUsageTracker(m),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, nil
	}
}
