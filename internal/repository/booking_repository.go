package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	"github.com/shareit-app/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BookerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	StartAt   time.Time `gorm:"not null;index"`
	EndAt     time.Time `gorm:"not null;index"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Item   ItemModel `gorm:"foreignKey:ItemID"`
	Booker UserModel `gorm:"foreignKey:BookerID"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Booker").
		Where("bookings.id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// Find returns the bookings matching q in a single query.
func (r *GormBookingRepository) Find(ctx context.Context, q bookingDomain.Query) ([]*bookingDomain.Booking, error) {
	if q.ItemIDs != nil && len(q.ItemIDs) == 0 {
		return []*bookingDomain.Booking{}, nil
	}

	tx := applyQuery(r.db.WithContext(ctx).Model(&BookingModel{}), q).
		Select("bookings.*").
		Preload("Item").
		Preload("Booker")

	for _, order := range orderClauses(q.Sort) {
		tx = tx.Order(order)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var models []BookingModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// Count returns how many bookings match q, ignoring limit and offset.
func (r *GormBookingRepository) Count(ctx context.Context, q bookingDomain.Query) (int64, error) {
	if q.ItemIDs != nil && len(q.ItemIDs) == 0 {
		return 0, nil
	}

	var total int64
	if err := applyQuery(r.db.WithContext(ctx).Model(&BookingModel{}), q).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return total, nil
}

// Save persists a new booking. The item and booker rows must already exist.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row holds version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"start_at":   model.StartAt,
			"end_at":     model.EndAt,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Query translation ---

func applyQuery(tx *gorm.DB, q bookingDomain.Query) *gorm.DB {
	if q.ItemOwnerID != nil {
		tx = tx.Joins("JOIN items ON items.id = bookings.item_id").
			Where("items.owner_id = ?", *q.ItemOwnerID)
	}
	if q.BookerID != nil {
		tx = tx.Where("bookings.booker_id = ?", *q.BookerID)
	}
	if q.ItemIDs != nil {
		tx = tx.Where("bookings.item_id IN ?", q.ItemIDs)
	}
	if q.Status != nil {
		tx = tx.Where("bookings.status = ?", string(*q.Status))
	}
	if q.StartBefore != nil {
		tx = tx.Where("bookings.start_at < ?", q.StartBefore.UTC())
	}
	if q.StartAfter != nil {
		tx = tx.Where("bookings.start_at > ?", q.StartAfter.UTC())
	}
	if q.EndBefore != nil {
		tx = tx.Where("bookings.end_at < ?", q.EndBefore.UTC())
	}
	if q.EndAfter != nil {
		tx = tx.Where("bookings.end_at > ?", q.EndAfter.UTC())
	}
	return tx
}

func orderClauses(key bookingDomain.SortKey) []string {
	switch key {
	case bookingDomain.SortStartAsc:
		return []string{"bookings.start_at ASC", "bookings.id ASC"}
	case bookingDomain.SortEndDesc:
		return []string{"bookings.end_at DESC", "bookings.id ASC"}
	default:
		return []string{"bookings.start_at DESC", "bookings.id ASC"}
	}
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.Item().ID,
		BookerID:  bk.Booker().ID,
		StartAt:   bk.Start(),
		EndAt:     bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.StartAt,
		m.EndAt,
		toItemDomain(&m.Item),
		toUserDomain(&m.Booker),
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
