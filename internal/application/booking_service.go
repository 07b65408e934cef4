package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-app/service-booking/internal/domain/item"
	userDomain "github.com/shareit-app/service-booking/internal/domain/user"
	"github.com/shareit-app/service-booking/pkg/clock"
	"github.com/shareit-app/service-booking/pkg/domain"
)

// BookingRecorder receives booking outcomes for instrumentation.
type BookingRecorder interface {
	BookingCreated()
	BookingDecided(status string)
}

type noopRecorder struct{}

func (noopRecorder) BookingCreated()       {}
func (noopRecorder) BookingDecided(string) {}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings bookingDomain.BookingRepository
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	clock    clock.Clock
	recorder BookingRecorder
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService. A nil recorder disables instrumentation.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	clk clock.Clock,
	recorder BookingRecorder,
	logger *zap.Logger,
) *BookingService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		clock:    clk,
		recorder: recorder,
		logger:   logger,
	}
}

// CreateBooking creates a WAITING booking of an item for the given booker.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if !req.Start.Before(req.End) {
		return nil, bookingDomain.ErrInvalidWindow
	}

	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !it.Available {
		return nil, bookingDomain.ErrItemUnavailable
	}

	booker, err := s.users.FindByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(req.Start, req.End, *it, *booker, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.recorder.BookingCreated()
	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", it.ID.String()),
		zap.String("booker_id", bookerID.String()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// DecideBooking approves or rejects a booking on behalf of the item owner.
func (s *BookingService) DecideBooking(ctx context.Context, approverID, bookingID uuid.UUID, approved bool) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	previous := bk.Status()
	if err := bk.Decide(approverID, approved, s.clock.Now()); err != nil {
		return nil, err
	}

	if bk.Status() != previous {
		bk.IncrementVersion()
		if err := s.bookings.Update(ctx, bk); err != nil {
			return nil, err
		}
		s.recorder.BookingDecided(bk.Status().String())
		s.logger.Info("booking decided",
			zap.String("booking_id", bk.ID().String()),
			zap.String("status", bk.Status().String()),
		)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking returns the booking when requesterID is its booker or item owner.
// For anyone else the result is nil without an error.
func (s *BookingService) GetBooking(ctx context.Context, requesterID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsVisibleTo(requesterID) {
		return nil, nil
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookerBookings lists the booker's bookings in the given state, newest start first.
func (s *BookingService) ListBookerBookings(ctx context.Context, bookerID uuid.UUID, state bookingDomain.State) ([]BookingDTO, error) {
	return s.list(ctx, bookingDomain.NewQuery().ByBooker(bookerID), state)
}

// ListOwnerBookings lists bookings of the owner's items in the given state, newest start first.
// An owner without items gets ErrNoItemsOwned.
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, state bookingDomain.State) ([]BookingDTO, error) {
	items, err := s.items.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, bookingDomain.ErrNoItemsOwned
	}
	return s.list(ctx, bookingDomain.NewQuery().ByItemOwner(ownerID), state)
}

func (s *BookingService) list(ctx context.Context, base bookingDomain.Query, state bookingDomain.State) ([]BookingDTO, error) {
	q, err := base.SortBy(bookingDomain.SortStartDesc).InState(state, s.clock.Now())
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bookings, err := s.bookings.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	q := bookingDomain.NewQuery().SortBy(bookingDomain.SortStartDesc)

	total, err := s.bookings.Count(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	bookings, err := s.bookings.Find(ctx, q.Page(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}
