package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit-app/service-booking/internal/domain/comment"
	"github.com/shareit-app/service-booking/internal/domain/item"
	"github.com/shareit-app/service-booking/internal/domain/user"
	"github.com/shareit-app/service-booking/pkg/kafka"
)

// CatalogProjection is the set of gateways the catalog consumer writes to.
type CatalogProjection struct {
	Users    user.UserRepository
	Items    item.ItemRepository
	Comments comment.CommentRepository
}

// CatalogEventConsumer keeps the local user, item and comment projection in sync with the catalog.
type CatalogEventConsumer struct {
	consumer   *kafka.Consumer
	projection CatalogProjection
	logger     *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupPrefix string,
	topic string,
	projection CatalogProjection,
	logger *zap.Logger,
) *CatalogEventConsumer {
	if topic == "" {
		topic = DefaultCatalogTopic
	}
	consumer := kafka.NewConsumer(brokers, groupPrefix+catalogConsumerSuffix, topic, logger)
	return &CatalogEventConsumer{
		consumer:   consumer,
		projection: projection,
		logger:     logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case CatalogUserUpserted:
		return c.handleUserUpserted(ctx, cloudEvent)
	case CatalogItemUpserted:
		return c.handleItemUpserted(ctx, cloudEvent)
	case CatalogCommentCreated:
		return c.handleCommentCreated(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CatalogEventConsumer) handleUserUpserted(ctx context.Context, ce kafka.CloudEvent) error {
	var evt UserUpsertedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse UserUpsertedEvent data", zap.Error(err))
		return nil
	}

	if err := c.projection.Users.Upsert(ctx, user.User{ID: evt.UserID, Name: evt.Name, Email: evt.Email}); err != nil {
		c.logger.Error("failed to project user",
			zap.String("user_id", evt.UserID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *CatalogEventConsumer) handleItemUpserted(ctx context.Context, ce kafka.CloudEvent) error {
	var evt ItemUpsertedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse ItemUpsertedEvent data", zap.Error(err))
		return nil
	}

	it := item.Item{
		ID:          evt.ItemID,
		OwnerID:     evt.OwnerID,
		Name:        evt.Name,
		Description: evt.Description,
		Available:   evt.Available,
		RequestID:   evt.RequestID,
	}
	if err := c.projection.Items.Upsert(ctx, it); err != nil {
		c.logger.Error("failed to project item",
			zap.String("item_id", evt.ItemID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("item projected",
		zap.String("item_id", evt.ItemID.String()),
		zap.Bool("available", evt.Available),
	)
	return nil
}

func (c *CatalogEventConsumer) handleCommentCreated(ctx context.Context, ce kafka.CloudEvent) error {
	var evt CommentCreatedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse CommentCreatedEvent data", zap.Error(err))
		return nil
	}

	cm := comment.Comment{
		ID:         evt.CommentID,
		ItemID:     evt.ItemID,
		AuthorID:   evt.AuthorID,
		AuthorName: evt.AuthorName,
		Text:       evt.Text,
		CreatedAt:  evt.CreatedAt.UTC(),
	}
	if err := c.projection.Comments.Save(ctx, cm); err != nil {
		c.logger.Error("failed to project comment",
			zap.String("comment_id", evt.CommentID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
