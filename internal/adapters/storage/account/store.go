package account

import (
	"context"

	domain "academy/internal/domain/account"
)

// Store persists athletes and admins.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Save(ctx context.Context, value domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// A zero Limit returns every matching row.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
	Search string // case-insensitive match on name or email
}
