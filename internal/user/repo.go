package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blagoySimandov/teachermail/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	InitializeDatabase(ctx context.Context) error
	Ping(ctx context.Context) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByAccountID(ctx context.Context, accountID string) (*models.User, error)
	GetOrCreate(ctx context.Context, accountID, email string, defaultTokens int) (*models.User, error)
	DecrementTokens(ctx context.Context, userID string) error
}

type UserRepository struct {
	db    *bun.DB
	clock clockwork.Clock
}

func NewUserRepository(db *bun.DB, clock clockwork.Clock) *UserRepository {
	return &UserRepository{db: db, clock: clock}
}

func (r *UserRepository) InitializeDatabase(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.UserDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = r.db.NewCreateIndex().
		Model((*models.UserDB)(nil)).
		Index("idx_users_email").
		Column("email").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return r.getBy(ctx, "id = ?", userID)
}

func (r *UserRepository) GetByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	return r.getBy(ctx, "account_id = ?", accountID)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Where(where, arg).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return userDB.ToUser(), nil
}

// GetOrCreate inserts a user with defaultTokens unless one already exists for
// accountID, then returns the stored row. Concurrent first contacts are safe:
// the loser of the insert race reads the winner's row.
func (r *UserRepository) GetOrCreate(ctx context.Context, accountID, email string, defaultTokens int) (*models.User, error) {
	now := r.clock.Now()
	userDB := models.UserFromDomain(&models.User{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Email:     email,
		Tokens:    defaultTokens,
		CreatedAt: now,
		UpdatedAt: now,
	})

	_, err := r.db.NewInsert().
		Model(userDB).
		On("CONFLICT (account_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return r.GetByAccountID(ctx, accountID)
}

// DecrementTokens takes one token in a single UPDATE. It does not check the
// balance, so concurrent callers can drive it below zero.
func (r *UserRepository) DecrementTokens(ctx context.Context, userID string) error {
	res, err := r.db.NewUpdate().
		Model((*models.UserDB)(nil)).
		Set("tokens = tokens - 1").
		Set("updated_at = ?", r.clock.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to decrement tokens: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
