package user

import (
	"context"

	"github.com/blagoySimandov/teachermail/internal/models"
)

type Service interface {
	GetOrCreate(ctx context.Context, accountID, email string) (*models.User, error)
	DecrementTokens(ctx context.Context, userID string) error
}

type UserService struct {
	repo          Repository
	defaultTokens int
}

func NewUserService(repo Repository, defaultTokens int) *UserService {
	return &UserService{
		repo:          repo,
		defaultTokens: defaultTokens,
	}
}

// GetOrCreate returns the stored user for accountID, seeding first-time users
// with the default balance.
func (s *UserService) GetOrCreate(ctx context.Context, accountID, email string) (*models.User, error) {
	return s.repo.GetOrCreate(ctx, accountID, email, s.defaultTokens)
}

func (s *UserService) DecrementTokens(ctx context.Context, userID string) error {
	return s.repo.DecrementTokens(ctx, userID)
}
