package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userDomain "github.com/shareit-app/service-booking/internal/domain/user"
	"github.com/shareit-app/service-booking/pkg/domain"
)

// UserModel is the GORM model for the users projection table.
type UserModel struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name  string    `gorm:"type:varchar(255);not null"`
	Email string    `gorm:"type:varchar(512);not null"`
}

// TableName sets the table name.
func (UserModel) TableName() string { return "users" }

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by ID.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	u := toUserDomain(&model)
	return &u, nil
}

// Upsert inserts the user or overwrites the stored projection.
func (r *GormUserRepository) Upsert(ctx context.Context, u userDomain.User) error {
	model := UserModel{ID: u.ID, Name: u.Name, Email: u.Email}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func toUserDomain(m *UserModel) userDomain.User {
	return userDomain.User{ID: m.ID, Name: m.Name, Email: m.Email}
}
