package application

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	"github.com/shareit-app/service-booking/internal/domain/comment"
	"github.com/shareit-app/service-booking/internal/domain/item"
	"github.com/shareit-app/service-booking/internal/domain/user"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"itemId" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// ItemDTO is the item snapshot embedded in booking responses.
type ItemDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
}

// UserDTO is the booker snapshot embedded in booking responses.
type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     uuid.UUID `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Item   ItemDTO   `json:"item"`
	Booker UserDTO   `json:"booker"`
	Status string    `json:"status"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

// ExtendedItemDTO is an item with its booking timeline and comments.
// LastBooking is the end of the latest concluded approved booking; NextBooking is the
// start of the soonest upcoming one. Both are present only for the owner.
type ExtendedItemDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Available   bool         `json:"available"`
	OwnerID     uuid.UUID    `json:"ownerId"`
	RequestID   *uuid.UUID   `json:"requestId,omitempty"`
	LastBooking *time.Time   `json:"lastBooking,omitempty"`
	NextBooking *time.Time   `json:"nextBooking,omitempty"`
	Comments    []CommentDTO `json:"comments"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Item:   toItemDTO(bk.Item()),
		Booker: toUserDTO(bk.Booker()),
		Status: bk.Status().String(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toItemDTO(it item.Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID,
		OwnerID:     it.OwnerID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
	}
}

func toUserDTO(u user.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toCommentDTO(c comment.Comment) CommentDTO {
	return CommentDTO{ID: c.ID, Text: c.Text, AuthorName: c.AuthorName, Created: c.CreatedAt}
}

func toExtendedItemDTO(it item.Item) ExtendedItemDTO {
	return ExtendedItemDTO{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		OwnerID:     it.OwnerID,
		RequestID:   it.RequestID,
		Comments:    []CommentDTO{},
	}
}
