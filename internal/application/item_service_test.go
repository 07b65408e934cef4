package application

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	"github.com/shareit-app/service-booking/internal/domain/item"
	"github.com/shareit-app/service-booking/pkg/domain"
)

func TestGetItem_OwnerSeesTimeline(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner")
	booker := e.user(t, "booker")
	it := e.item(t, owner, "drill", true)

	e.seed(t, it, booker, hours(-20), hours(-15), bookingDomain.StatusApproved)
	e.seed(t, it, booker, hours(-10), hours(-5), bookingDomain.StatusApproved)
	e.seed(t, it, booker, hours(-4), hours(-2), bookingDomain.StatusRejected)
	e.seed(t, it, booker, hours(-1), hours(1), bookingDomain.StatusApproved)
	e.seed(t, it, booker, hours(3), hours(4), bookingDomain.StatusWaiting)
	e.seed(t, it, booker, hours(5), hours(6), bookingDomain.StatusApproved)
	e.seed(t, it, booker, hours(9), hours(10), bookingDomain.StatusApproved)
	c := e.comment(t, it, booker, "great drill", hours(-3))

	got, err := e.items.GetItem(e.ctx, it.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastBooking)
	require.NotNil(t, got.NextBooking)
	assert.Equal(t, hours(-5), *got.LastBooking)
	assert.Equal(t, hours(5), *got.NextBooking)
	assert.Equal(t, []CommentDTO{toCommentDTO(c)}, got.Comments)

	other, err := e.items.GetItem(e.ctx, it.ID, booker.ID)
	require.NoError(t, err)
	assert.Nil(t, other.LastBooking)
	assert.Nil(t, other.NextBooking)
	assert.Len(t, other.Comments, 1)
}

func TestGetItem_NonOwnerSkipsBookingLookups(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner")
	stranger := e.user(t, "stranger")
	it := e.item(t, owner, "drill", true)

	_, err := e.items.GetItem(e.ctx, it.ID, stranger.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, e.bookings.finds)
	assert.Equal(t, 1, e.comments.finds)
}

func TestGetItem_NotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.items.GetItem(e.ctx, uuid.New(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestListOwnerItems_EmptyItemGetsNothing(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner")
	booker := e.user(t, "booker")
	busy := e.item(t, owner, "a-busy", true)
	idle := e.item(t, owner, "b-idle", true)
	e.seed(t, busy, booker, hours(-3), hours(-2), bookingDomain.StatusApproved)
	e.comment(t, busy, booker, "ok", hours(-1))

	got, err := e.items.ListOwnerItems(e.ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, busy.ID, got[0].ID)
	require.NotNil(t, got[0].LastBooking)
	assert.Len(t, got[0].Comments, 1)

	assert.Equal(t, idle.ID, got[1].ID)
	assert.Nil(t, got[1].LastBooking)
	assert.Nil(t, got[1].NextBooking)
	assert.NotNil(t, got[1].Comments)
	assert.Empty(t, got[1].Comments)
}

func TestListOwnerItems_NoItems(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner")

	got, err := e.items.ListOwnerItems(e.ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, e.bookings.finds)
	assert.Equal(t, 0, e.comments.finds)
}

func TestListOwnerItems_UnknownOwner(t *testing.T) {
	e := newEnv(t)
	_, err := e.items.ListOwnerItems(e.ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestListOwnerItems_QueryCountIndependentOfItemCount(t *testing.T) {
	for _, n := range []int{1, 5, 40} {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			e := newEnv(t)
			owner := e.user(t, "owner")
			booker := e.user(t, "booker")
			for i := 0; i < n; i++ {
				it := e.item(t, owner, fmt.Sprintf("item-%03d", i), true)
				e.seed(t, it, booker, hours(-i-2), hours(-i-1), bookingDomain.StatusApproved)
				e.seed(t, it, booker, hours(i+1), hours(i+2), bookingDomain.StatusApproved)
				e.comment(t, it, booker, "c", hours(-1))
			}

			got, err := e.items.ListOwnerItems(e.ctx, owner.ID)
			require.NoError(t, err)
			assert.Len(t, got, n)
			assert.Equal(t, 2, e.bookings.finds)
			assert.Equal(t, 1, e.comments.finds)
		})
	}
}

// TestListOwnerItems_MatchesPerItemLookup compares the batched result with GetItem called per item.
func TestListOwnerItems_MatchesPerItemLookup(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner")
	bookers := []string{"ann", "bob", "cid"}
	rng := rand.New(rand.NewSource(42))

	var items []item.Item
	for i := 0; i < 12; i++ {
		items = append(items, e.item(t, owner, fmt.Sprintf("item-%02d", i), i%5 != 0))
	}
	statuses := []bookingDomain.BookingStatus{bookingDomain.StatusApproved, bookingDomain.StatusWaiting, bookingDomain.StatusRejected}
	for _, name := range bookers {
		u := e.user(t, name)
		for k := 0; k < 25; k++ {
			it := items[rng.Intn(len(items))]
			start := hours(rng.Intn(200) - 100)
			end := start.Add(time.Duration(rng.Intn(48)+1) * time.Hour)
			e.seed(t, it, u, start, end, statuses[rng.Intn(len(statuses))])
		}
		for k := 0; k < 5; k++ {
			e.comment(t, items[rng.Intn(len(items))], u, "note", hours(-rng.Intn(100)))
		}
	}

	batch, err := e.items.ListOwnerItems(e.ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, batch, len(items))

	for _, got := range batch {
		want, err := e.items.GetItem(e.ctx, got.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, *want, got, "item %s", got.Name)
	}
}
