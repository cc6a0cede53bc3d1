package user

import (
	"context"

	"github.com/mkrupp/fishpizzaria/internal/domain"
)

// Repository defines the interface for account persistence.
type Repository interface {
	// CreateUser adds a new account to the repository.
	// Returns ErrUserAlreadyExists if the email is already taken.
	CreateUser(ctx context.Context, account domain.Account) error

	// GetUserByEmail retrieves an account by its login email.
	// Returns ErrUserNotFound if there is no such account.
	GetUserByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetUserByID retrieves an account by its ID.
	// Returns ErrUserNotFound if there is no such account.
	GetUserByID(ctx context.Context, id string) (domain.Account, error)

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
