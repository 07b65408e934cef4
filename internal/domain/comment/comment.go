package comment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Comment is a review left on an item.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentRepository is the storage gateway for comments.
type CommentRepository interface {
	// FindByItemIDs returns the comments of all given items, oldest first, in one lookup.
	FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]Comment, error)
	Save(ctx context.Context, c Comment) error
}
