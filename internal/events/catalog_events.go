package events

import (
	"time"

	"github.com/google/uuid"
)

// Catalog event types consumed from the catalog topic.
const (
	CatalogUserUpserted   = "catalog.user.upserted"
	CatalogItemUpserted   = "catalog.item.upserted"
	CatalogCommentCreated = "catalog.comment.created"
	DefaultCatalogTopic   = "catalog.events"
	catalogConsumerSuffix = "-catalog"
)

// UserUpsertedEvent carries the current state of an account.
type UserUpsertedEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// ItemUpsertedEvent carries the current state of an item.
type ItemUpsertedEvent struct {
	ItemID      uuid.UUID  `json:"item_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	RequestID   *uuid.UUID `json:"request_id,omitempty"`
}

// CommentCreatedEvent carries a new comment on an item.
type CommentCreatedEvent struct {
	CommentID  uuid.UUID `json:"comment_id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
