package user

import (
	"context"

	"github.com/google/uuid"
)

// User is the local projection of an account.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// UserRepository is the storage gateway for users.
type UserRepository interface {
	// FindByID returns a NOT_FOUND domain error when the user does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Upsert(ctx context.Context, user User) error
}
