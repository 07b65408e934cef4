package booking

import (
	"github.com/shareit-app/service-booking/pkg/domain"
)

var (
	// ErrInvalidWindow is returned when start is not strictly before end.
	ErrInvalidWindow = domain.NewValidationError("booking start must be strictly before its end")

	// ErrItemUnavailable is returned when the item is flagged as not available.
	ErrItemUnavailable = domain.NewConflictError("item is not available for booking")

	// ErrNotItemOwner is returned when someone other than the item owner decides a booking.
	ErrNotItemOwner = domain.NewForbiddenError("only the item owner can approve or reject a booking")

	// ErrNoItemsOwned is returned by owner listings when the user owns no items.
	ErrNoItemsOwned = domain.NewDomainError(domain.ErrCodeNotFound, "user does not own any items")
)

func newInvalidTransitionError(from, to BookingStatus) error {
	return domain.NewInvalidStateError(string(from), string(to))
}
