package user

import (
	"context"
	"sync"

	"github.com/blagoySimandov/teachermail/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// MemoryRepository keeps users in process memory. It backs development runs
// without postgres and the package tests of the generation flow.
type MemoryRepository struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	byID      map[string]*models.User
	byAccount map[string]string
}

func NewMemoryRepository(clock clockwork.Clock) *MemoryRepository {
	return &MemoryRepository{
		clock:     clock,
		byID:      make(map[string]*models.User),
		byAccount: make(map[string]string),
	}
}

func (r *MemoryRepository) InitializeDatabase(ctx context.Context) error { return nil }

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

func (r *MemoryRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *MemoryRepository) GetByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byAccount[accountID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(r.byID[id]), nil
}

func (r *MemoryRepository) GetOrCreate(ctx context.Context, accountID, email string, defaultTokens int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byAccount[accountID]; ok {
		return copyUser(r.byID[id]), nil
	}

	now := r.clock.Now()
	u := &models.User{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Email:     email,
		Tokens:    defaultTokens,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[u.ID] = u
	r.byAccount[accountID] = u.ID
	return copyUser(u), nil
}

func (r *MemoryRepository) DecrementTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Tokens--
	u.UpdatedAt = r.clock.Now()
	return nil
}

// SetTokens overwrites a balance; used to seed fixtures.
func (r *MemoryRepository) SetTokens(userID string, tokens int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Tokens = tokens
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}
