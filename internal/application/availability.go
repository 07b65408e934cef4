package application

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	"github.com/shareit-app/service-booking/internal/domain/comment"
	"github.com/shareit-app/service-booking/internal/domain/item"
)

// annotate attaches the timeline and comments to items in one pass over each result set.
//
// past must be ordered by end descending and upcoming by start ascending, so the first
// booking seen for an item is its extremal one. Comments keep their input order.
func annotate(items []item.Item, past, upcoming []*bookingDomain.Booking, comments []comment.Comment) []ExtendedItemDTO {
	last := firstPerItem(past, func(b *bookingDomain.Booking) time.Time { return b.End() })
	next := firstPerItem(upcoming, func(b *bookingDomain.Booking) time.Time { return b.Start() })

	byItem := make(map[uuid.UUID][]CommentDTO, len(items))
	for _, c := range comments {
		byItem[c.ItemID] = append(byItem[c.ItemID], toCommentDTO(c))
	}

	out := make([]ExtendedItemDTO, len(items))
	for i, it := range items {
		dto := toExtendedItemDTO(it)
		if t, ok := last[it.ID]; ok {
			dto.LastBooking = &t
		}
		if t, ok := next[it.ID]; ok {
			dto.NextBooking = &t
		}
		if cs, ok := byItem[it.ID]; ok {
			dto.Comments = cs
		}
		out[i] = dto
	}
	return out
}

func firstPerItem(bookings []*bookingDomain.Booking, stamp func(*bookingDomain.Booking) time.Time) map[uuid.UUID]time.Time {
	first := make(map[uuid.UUID]time.Time)
	for _, b := range bookings {
		id := b.Item().ID
		if _, seen := first[id]; !seen {
			first[id] = stamp(b)
		}
	}
	return first
}
