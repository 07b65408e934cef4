package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	"github.com/shareit-app/service-booking/internal/domain/comment"
	"github.com/shareit-app/service-booking/internal/domain/item"
	"github.com/shareit-app/service-booking/internal/domain/user"
	"github.com/shareit-app/service-booking/internal/repository/memory"
	"github.com/shareit-app/service-booking/pkg/clock"
)

var testNow = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

func hours(h int) time.Time { return testNow.Add(time.Duration(h) * time.Hour) }

type countingRecorder struct {
	created   int
	decisions map[string]int
}

func (r *countingRecorder) BookingCreated() { r.created++ }
func (r *countingRecorder) BookingDecided(status string) {
	if r.decisions == nil {
		r.decisions = map[string]int{}
	}
	r.decisions[status]++
}

// countingBookings counts Find calls on the wrapped repository.
type countingBookings struct {
	bookingDomain.BookingRepository
	finds int
}

func (c *countingBookings) Find(ctx context.Context, q bookingDomain.Query) ([]*bookingDomain.Booking, error) {
	c.finds++
	return c.BookingRepository.Find(ctx, q)
}

type countingComments struct {
	comment.CommentRepository
	finds int
}

func (c *countingComments) FindByItemIDs(ctx context.Context, ids []uuid.UUID) ([]comment.Comment, error) {
	c.finds++
	return c.CommentRepository.FindByItemIDs(ctx, ids)
}

type env struct {
	ctx      context.Context
	store    *memory.Store
	clock    *clock.FixedClock
	recorder *countingRecorder
	bookings *countingBookings
	comments *countingComments
	svc      *BookingService
	items    *ItemService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	clk := clock.Fixed(testNow)
	rec := &countingRecorder{}
	bookings := &countingBookings{BookingRepository: store.Bookings()}
	comments := &countingComments{CommentRepository: store.Comments()}
	log := zap.NewNop()
	return &env{
		ctx:      context.Background(),
		store:    store,
		clock:    clk,
		recorder: rec,
		bookings: bookings,
		comments: comments,
		svc:      NewBookingService(bookings, store.Items(), store.Users(), clk, rec, log),
		items:    NewItemService(store.Items(), store.Users(), bookings, comments, clk, log),
	}
}

func (e *env) user(t *testing.T, name string) user.User {
	t.Helper()
	u := user.User{ID: uuid.New(), Name: name, Email: name + "@example.com"}
	require.NoError(t, e.store.Users().Upsert(e.ctx, u))
	return u
}

func (e *env) item(t *testing.T, owner user.User, name string, available bool) item.Item {
	t.Helper()
	it := item.Item{ID: uuid.New(), OwnerID: owner.ID, Name: name, Description: "a " + name, Available: available}
	require.NoError(t, e.store.Items().Upsert(e.ctx, it))
	return it
}

func (e *env) comment(t *testing.T, it item.Item, author user.User, text string, at time.Time) comment.Comment {
	t.Helper()
	c := comment.Comment{ID: uuid.New(), ItemID: it.ID, AuthorID: author.ID, AuthorName: author.Name, Text: text, CreatedAt: at}
	require.NoError(t, e.store.Comments().Save(e.ctx, c))
	return c
}

// seed stores a booking directly, bypassing the future-window checks of the HTTP layer.
func (e *env) seed(t *testing.T, it item.Item, booker user.User, start, end time.Time, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	b := bookingDomain.ReconstructBooking(uuid.New(), start, end, it, booker, status, 1, testNow, testNow)
	require.NoError(t, e.store.Bookings().Save(e.ctx, b))
	return b
}
