package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit-app/service-booking/internal/domain/item"
	"github.com/shareit-app/service-booking/internal/domain/user"
)

// Booking is the aggregate root for a reservation of an item over [start, end).
type Booking struct {
	id     uuid.UUID
	start  time.Time
	end    time.Time
	item   item.Item
	booker user.User
	status BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a WAITING booking. The item and booker are snapshots resolved by the caller.
func NewBooking(start, end time.Time, it item.Item, booker user.User, now time.Time) (*Booking, error) {
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}
	if !it.Available {
		return nil, ErrItemUnavailable
	}

	now = now.UTC()
	return &Booking{
		id:        uuid.New(),
		start:     start.UTC(),
		end:       end.UTC(),
		item:      it,
		booker:    booker,
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	start, end time.Time,
	it item.Item,
	booker user.User,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		start:     start.UTC(),
		end:       end.UTC(),
		item:      it,
		booker:    booker,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Start returns when the reservation begins.
func (b *Booking) Start() time.Time { return b.start }

// End returns when the reservation ends.
func (b *Booking) End() time.Time { return b.end }

// Item returns the snapshot of the reserved item.
func (b *Booking) Item() item.Item { return b.item }

// Booker returns the snapshot of the requesting user.
func (b *Booking) Booker() user.User { return b.booker }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsVisibleTo reports whether userID is the booker or the owner of the booked item.
func (b *Booking) IsVisibleTo(userID uuid.UUID) bool {
	return b.booker.ID == userID || b.item.IsOwnedBy(userID)
}

// Decide records the owner's decision. Repeating the decision already recorded is a no-op;
// reversing a decided booking fails.
func (b *Booking) Decide(approverID uuid.UUID, approved bool, now time.Time) error {
	if !b.item.IsOwnedBy(approverID) {
		return ErrNotItemOwner
	}

	target := StatusRejected
	if approved {
		target = StatusApproved
	}
	if b.status == target {
		return nil
	}
	if !b.status.CanTransitionTo(target) {
		return newInvalidTransitionError(b.status, target)
	}

	b.status = target
	b.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
