package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-app/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit-app/service-booking/internal/domain/item"
	userDomain "github.com/shareit-app/service-booking/internal/domain/user"
	"github.com/shareit-app/service-booking/pkg/clock"
)

// ItemService serves items enriched with their booking timeline and comments.
type ItemService struct {
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	bookings bookingDomain.BookingRepository
	comments commentDomain.CommentRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	bookings bookingDomain.BookingRepository,
	comments commentDomain.CommentRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		clock:    clk,
		logger:   logger,
	}
}

// GetItem returns one item. Last and next bookings are only resolved for its owner.
func (s *ItemService) GetItem(ctx context.Context, itemID, callerID uuid.UUID) (*ExtendedItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	ids := []uuid.UUID{it.ID}
	var past, upcoming []*bookingDomain.Booking
	if it.IsOwnedBy(callerID) {
		now := s.clock.Now()
		past, err = s.bookings.Find(ctx, pastQuery(ids, now).First())
		if err != nil {
			return nil, err
		}
		upcoming, err = s.bookings.Find(ctx, upcomingQuery(ids, now).First())
		if err != nil {
			return nil, err
		}
	}

	comments, err := s.comments.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := annotate([]itemDomain.Item{*it}, past, upcoming, comments)[0]
	return &result, nil
}

// ListOwnerItems returns every item of the owner with its timeline and comments.
// The number of storage lookups does not depend on how many items the owner has.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID uuid.UUID) ([]ExtendedItemDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.items.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []ExtendedItemDTO{}, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	now := s.clock.Now()
	past, err := s.bookings.Find(ctx, pastQuery(ids, now))
	if err != nil {
		return nil, err
	}
	upcoming, err := s.bookings.Find(ctx, upcomingQuery(ids, now))
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("annotated owner items",
		zap.String("owner_id", ownerID.String()),
		zap.Int("items", len(items)),
		zap.Int("past", len(past)),
		zap.Int("upcoming", len(upcoming)),
		zap.Int("comments", len(comments)),
	)

	return annotate(items, past, upcoming, comments), nil
}

func pastQuery(itemIDs []uuid.UUID, now time.Time) bookingDomain.Query {
	return bookingDomain.NewQuery().
		ForItems(itemIDs).
		WithStatus(bookingDomain.StatusApproved).
		EndingBefore(now).
		SortBy(bookingDomain.SortEndDesc)
}

func upcomingQuery(itemIDs []uuid.UUID, now time.Time) bookingDomain.Query {
	return bookingDomain.NewQuery().
		ForItems(itemIDs).
		WithStatus(bookingDomain.StatusApproved).
		StartingAfter(now).
		SortBy(bookingDomain.SortStartAsc)
}
