package booking

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// SortKey orders query results.
type SortKey int

const (
	SortStartDesc SortKey = iota
	SortStartAsc
	SortEndDesc
)

// Query composes booking predicates. The zero value matches every booking, sorted by start descending.
// All set predicates are combined with AND; time bounds are strict.
type Query struct {
	BookerID    *uuid.UUID
	ItemOwnerID *uuid.UUID
	ItemIDs     []uuid.UUID
	Status      *BookingStatus
	StartBefore *time.Time
	StartAfter  *time.Time
	EndBefore   *time.Time
	EndAfter    *time.Time
	Sort        SortKey
	Limit       int
	Offset      int
}

// NewQuery returns an empty Query.
func NewQuery() Query { return Query{} }

// ByBooker restricts to bookings made by bookerID.
func (q Query) ByBooker(bookerID uuid.UUID) Query {
	q.BookerID = &bookerID
	return q
}

// ByItemOwner restricts to bookings of items owned by ownerID.
func (q Query) ByItemOwner(ownerID uuid.UUID) Query {
	q.ItemOwnerID = &ownerID
	return q
}

// ForItems restricts to bookings of the given items. An empty set matches nothing.
func (q Query) ForItems(itemIDs []uuid.UUID) Query {
	q.ItemIDs = slices.Clone(itemIDs)
	if q.ItemIDs == nil {
		q.ItemIDs = []uuid.UUID{}
	}
	return q
}

// WithStatus restricts to one status.
func (q Query) WithStatus(s BookingStatus) Query {
	q.Status = &s
	return q
}

// StartingBefore restricts to start < t.
func (q Query) StartingBefore(t time.Time) Query {
	q.StartBefore = &t
	return q
}

// StartingAfter restricts to start > t.
func (q Query) StartingAfter(t time.Time) Query {
	q.StartAfter = &t
	return q
}

// EndingBefore restricts to end < t.
func (q Query) EndingBefore(t time.Time) Query {
	q.EndBefore = &t
	return q
}

// EndingAfter restricts to end > t.
func (q Query) EndingAfter(t time.Time) Query {
	q.EndAfter = &t
	return q
}

// SortBy sets the result ordering.
func (q Query) SortBy(key SortKey) Query {
	q.Sort = key
	return q
}

// Page limits the result to one page (1-based).
func (q Query) Page(page, limit int) Query {
	if page < 1 {
		page = 1
	}
	q.Limit = limit
	q.Offset = (page - 1) * limit
	return q
}

// First limits the result to one booking.
func (q Query) First() Query {
	q.Limit = 1
	return q
}

// InState narrows the query to a listing state evaluated at now.
func (q Query) InState(state State, now time.Time) (Query, error) {
	switch state {
	case StateAll:
		return q, nil
	case StateCurrent:
		return q.StartingBefore(now).EndingAfter(now), nil
	case StatePast:
		return q.EndingBefore(now), nil
	case StateFuture:
		return q.StartingAfter(now), nil
	case StateWaiting, StateRejected:
		status, _ := state.status()
		return q.WithStatus(status), nil
	default:
		return q, fmt.Errorf("unknown state: %s", state)
	}
}

// Matches evaluates the predicates against b in memory.
func (q Query) Matches(b *Booking) bool {
	if q.BookerID != nil && b.Booker().ID != *q.BookerID {
		return false
	}
	if q.ItemOwnerID != nil && b.Item().OwnerID != *q.ItemOwnerID {
		return false
	}
	if q.ItemIDs != nil && !slices.Contains(q.ItemIDs, b.Item().ID) {
		return false
	}
	if q.Status != nil && b.Status() != *q.Status {
		return false
	}
	if q.StartBefore != nil && !b.Start().Before(*q.StartBefore) {
		return false
	}
	if q.StartAfter != nil && !b.Start().After(*q.StartAfter) {
		return false
	}
	if q.EndBefore != nil && !b.End().Before(*q.EndBefore) {
		return false
	}
	if q.EndAfter != nil && !b.End().After(*q.EndAfter) {
		return false
	}
	return true
}

// Compare orders a before b according to the sort key; ties fall back to id.
func (q Query) Compare(a, b *Booking) int {
	var c int
	switch q.Sort {
	case SortStartAsc:
		c = a.Start().Compare(b.Start())
	case SortEndDesc:
		c = b.End().Compare(a.End())
	default:
		c = b.Start().Compare(a.Start())
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID().String(), b.ID().String())
}

// Apply filters, sorts and pages bookings in memory.
func (q Query) Apply(bookings []*Booking) []*Booking {
	out := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if q.Matches(b) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, q.Compare)

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []*Booking{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out
}
