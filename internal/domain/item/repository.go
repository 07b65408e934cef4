package item

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository is the storage gateway for items.
type ItemRepository interface {
	// FindByID returns a NOT_FOUND domain error when the item does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByOwnerID returns the owner's items ordered by name; empty when there are none.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Item, error)

	// Upsert inserts or replaces an item from a catalog event.
	Upsert(ctx context.Context, item Item) error
}
