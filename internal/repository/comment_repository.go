package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	commentDomain "github.com/shareit-app/service-booking/internal/domain/comment"
)

// CommentModel is the GORM model for the comments projection table.
type CommentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null"`
	AuthorName string    `gorm:"type:varchar(255);not null"`
	Text       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (CommentModel) TableName() string { return "comments" }

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Save stores a comment. Replayed events with a known ID are ignored.
func (r *GormCommentRepository) Save(ctx context.Context, c commentDomain.Comment) error {
	model := toCommentModel(c)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

// FindByItemIDs returns the comments of all given items in a single query, oldest first.
func (r *GormCommentRepository) FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]commentDomain.Comment, error) {
	if len(itemIDs) == 0 {
		return []commentDomain.Comment{}, nil
	}

	var models []CommentModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find comments by item IDs: %w", err)
	}

	comments := make([]commentDomain.Comment, len(models))
	for i := range models {
		comments[i] = toCommentDomain(&models[i])
	}
	return comments, nil
}

func toCommentModel(c commentDomain.Comment) CommentModel {
	return CommentModel{
		ID:         c.ID,
		ItemID:     c.ItemID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt.UTC(),
	}
}

func toCommentDomain(m *CommentModel) commentDomain.Comment {
	return commentDomain.Comment{
		ID:         m.ID,
		ItemID:     m.ItemID,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}
