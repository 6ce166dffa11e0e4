package ports

import (
	"context"

	"github.com/aciencia/catalog-system/internal/core/domain"
)

// UserRepository defines persistence for credential records.
type UserRepository interface {
	// Create persists a transient user and returns it with its assigned id.
	// A username or email collision yields domain.ErrDuplicateUser.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update saves in-place changes to a persisted user. Collisions on the
	// unique fields yield domain.ErrDuplicateUser.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns all users ordered by id.
	List(ctx context.Context) ([]*domain.User, error)
}
