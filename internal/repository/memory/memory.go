// Package memory provides in-process storage gateways, used when STORAGE_DRIVER=memory
// and by application tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shareit-app/service-booking/internal/domain/booking"
	"github.com/shareit-app/service-booking/internal/domain/comment"
	"github.com/shareit-app/service-booking/internal/domain/item"
	"github.com/shareit-app/service-booking/internal/domain/user"
	"github.com/shareit-app/service-booking/pkg/domain"
)

// Store holds users, items, comments and bookings behind one lock.
// Bookings reference items and users by id so reads reflect the current projection.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]user.User
	items    map[uuid.UUID]item.Item
	comments []comment.Comment
	bookings map[uuid.UUID]storedBooking
}

type storedBooking struct {
	booking  *booking.Booking
	itemID   uuid.UUID
	bookerID uuid.UUID
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]user.User),
		items:    make(map[uuid.UUID]item.Item),
		bookings: make(map[uuid.UUID]storedBooking),
	}
}

// Users returns the user gateway view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Items returns the item gateway view of the store.
func (s *Store) Items() *ItemRepository { return &ItemRepository{s: s} }

// Comments returns the comment gateway view of the store.
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s: s} }

// Bookings returns the booking gateway view of the store.
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

// UserRepository implements user.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return &u, nil
}

func (r *UserRepository) Upsert(_ context.Context, u user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = u
	return nil
}

// ItemRepository implements item.ItemRepository.
type ItemRepository struct{ s *Store }

func (r *ItemRepository) FindByID(_ context.Context, id uuid.UUID) (*item.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id.String())
	}
	return &it, nil
}

func (r *ItemRepository) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]item.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []item.Item{}
	for _, it := range r.s.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b item.Item) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (r *ItemRepository) Upsert(_ context.Context, it item.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[it.ID] = it
	return nil
}

// CommentRepository implements comment.CommentRepository.
type CommentRepository struct{ s *Store }

func (r *CommentRepository) FindByItemIDs(_ context.Context, itemIDs []uuid.UUID) ([]comment.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []comment.Comment{}
	for _, c := range r.s.comments {
		if slices.Contains(itemIDs, c.ItemID) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b comment.Comment) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *CommentRepository) Save(_ context.Context, c comment.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.comments {
		if existing.ID == c.ID {
			return nil
		}
	}
	r.s.comments = append(r.s.comments, c)
	return nil
}

// BookingRepository implements booking.BookingRepository.
type BookingRepository struct{ s *Store }

func (r *BookingRepository) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sb, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return r.s.hydrate(sb), nil
}

func (r *BookingRepository) Find(_ context.Context, q booking.Query) ([]*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return q.Apply(r.s.snapshot()), nil
}

func (r *BookingRepository) Count(_ context.Context, q booking.Query) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q.Limit, q.Offset = 0, 0
	return int64(len(q.Apply(r.s.snapshot()))), nil
}

func (r *BookingRepository) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, sb := range r.s.bookings {
		counts[string(sb.booking.Status())]++
	}
	return counts, nil
}

func (r *BookingRepository) Save(_ context.Context, b *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.bookings[b.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	r.s.bookings[b.ID()] = storedBooking{booking: clone(b), itemID: b.Item().ID, bookerID: b.Booker().ID}
	return nil
}

func (r *BookingRepository) Update(_ context.Context, b *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sb, ok := r.s.bookings[b.ID()]
	if !ok || sb.booking.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	sb.booking = clone(b)
	r.s.bookings[b.ID()] = sb
	return nil
}

// snapshot returns hydrated copies of every booking. Callers hold the read lock.
func (s *Store) snapshot() []*booking.Booking {
	out := make([]*booking.Booking, 0, len(s.bookings))
	for _, sb := range s.bookings {
		out = append(out, s.hydrate(sb))
	}
	return out
}

func (s *Store) hydrate(sb storedBooking) *booking.Booking {
	it, ok := s.items[sb.itemID]
	if !ok {
		it = sb.booking.Item()
	}
	u, ok := s.users[sb.bookerID]
	if !ok {
		u = sb.booking.Booker()
	}
	b := sb.booking
	return booking.ReconstructBooking(b.ID(), b.Start(), b.End(), it, u, b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt())
}

func clone(b *booking.Booking) *booking.Booking {
	return booking.ReconstructBooking(b.ID(), b.Start(), b.End(), b.Item(), b.Booker(), b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt())
}
