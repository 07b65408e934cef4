//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shareit-app/service-booking/internal/application"
	bookingEvents "github.com/shareit-app/service-booking/internal/events"
	"github.com/shareit-app/service-booking/internal/repository"
	"github.com/shareit-app/service-booking/pkg/clock"
	"github.com/shareit-app/service-booking/pkg/database"
	"github.com/shareit-app/service-booking/pkg/kafka"
)

const catalogTopic = "catalog.events"

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Bookings *application.BookingService
	Items    *application.ItemService
	Consumer *bookingEvents.CatalogEventConsumer
	Clock    *clock.FixedClock
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a migrated GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())
	migrateURL := fmt.Sprintf("postgres://test:test@%s:%s/test_booking?sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	// Apply the production schema.
	migrationsDir, err := filepath.Abs("migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(migrateURL, migrationsDir, zap.NewNop()))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, catalogTopic)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack on top of Postgres.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string, now time.Time) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookings := repository.NewGormBookingRepository(db)
	items := repository.NewGormItemRepository(db)
	users := repository.NewGormUserRepository(db)
	comments := repository.NewGormCommentRepository(db)
	clk := clock.Fixed(now)

	groupPrefix := fmt.Sprintf("test-%s-", uuid.New().String()[:8])
	consumer := bookingEvents.NewCatalogEventConsumer(brokers, groupPrefix, catalogTopic,
		bookingEvents.CatalogProjection{Users: users, Items: items, Comments: comments}, logger)

	return &bookingStack{
		Bookings: application.NewBookingService(bookings, items, users, clk, nil, logger),
		Items:    application.NewItemService(items, users, bookings, comments, clk, logger),
		Consumer: consumer,
		Clock:    clk,
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, eventType, key string, data interface{}) {
	t.Helper()
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        catalogTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	defer func() { _ = writer.Close() }()

	ce, err := kafka.NewCloudEvent("service-catalog", eventType, data)
	require.NoError(t, err, "failed to create cloud event")
	value, err := json.Marshal(ce)
	require.NoError(t, err)

	err = writer.WriteMessages(context.Background(), kafkago.Message{Key: []byte(key), Value: value})
	require.NoError(t, err, "failed to publish event")
}

// waitForItem polls the items table until the item exists.
func waitForItem(t *testing.T, db *gorm.DB, itemID uuid.UUID, timeout time.Duration) repository.ItemModel {
	t.Helper()
	var result repository.ItemModel
	require.Eventually(t, func() bool {
		var model repository.ItemModel
		if err := db.Where("id = ?", itemID).First(&model).Error; err != nil {
			return false
		}
		result = model
		return true
	}, timeout, 200*time.Millisecond, "item %s was not projected", itemID)
	return result
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
