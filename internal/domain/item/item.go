package item

import "github.com/google/uuid"

// Item is the local projection of a catalog item. The booking service never writes it
// except when applying catalog events.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	RequestID   *uuid.UUID `json:"request_id,omitempty"`
}

// IsOwnedBy reports whether userID owns the item.
func (i Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.OwnerID == userID
}
