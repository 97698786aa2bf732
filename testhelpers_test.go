//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/taxi-travel/service-travel/internal/application"
	"github.com/taxi-travel/service-travel/internal/domain/partner"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	travelEvents "github.com/taxi-travel/service-travel/internal/events"
	"github.com/taxi-travel/service-travel/internal/integrations/partnerclient"
	"github.com/taxi-travel/service-travel/internal/integrations/partnerstub"
	"github.com/taxi-travel/service-travel/internal/platform/database"
	"github.com/taxi-travel/service-travel/internal/platform/kafka"
	"github.com/taxi-travel/service-travel/internal/platform/response"
	"github.com/taxi-travel/service-travel/internal/repository"
	"github.com/taxi-travel/service-travel/internal/saga"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// travelStack holds wired-up travel service components.
type travelStack struct {
	Store       *repository.GormTxManager
	Trips       *application.TravelAgentService
	Guests      *application.GuestBookingService
	Orphans     *application.OrphanService
	Consumer    *travelEvents.CompensationEventConsumer
	Flights     *partnerstub.Stub[partner.FlightBooking]
	Hotels      *partnerstub.Stub[partner.HotelBooking]
	HotelServer *httptest.Server
	Cleanup     func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers, applies the SQL
// migrations and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_travel",
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

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Int(),
		User:     "test",
		Password: "test",
		DBName:   "test_travel",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", logger))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, travelagent.TopicTravelEvents)

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

// servePartner exposes a partner stub over HTTP the way the real flight and
// hotel APIs do, so the HTTP client is exercised end to end.
func servePartner[T partner.Reservation[T]](stub *partnerstub.Stub[T], resource string) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	writeErr := func(c *gin.Context, err error) {
		status, body := response.Describe(err)
		c.JSON(status, body)
	}
	parseID := func(c *gin.Context) (int64, bool) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return 0, false
		}
		return id, true
	}

	r.POST(resource, func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		out, err := stub.Create(c.Request.Context(), in)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
	r.GET(resource+"/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		out, err := stub.FindByID(c.Request.Context(), id)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
	r.DELETE(resource+"/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		out, err := stub.Delete(c.Request.Context(), id)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
	return httptest.NewServer(r)
}

// setupTravelStack wires up the full travel service stack against real
// Postgres and Kafka, with the partners served over HTTP.
func setupTravelStack(t *testing.T, db *gorm.DB, brokers []string) *travelStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	flights := partnerstub.NewFlights()
	hotels := partnerstub.NewHotels()
	flightServer := servePartner(flights, "/flightBookings")
	hotelServer := servePartner(hotels, "/hotelBookings")

	store := repository.NewGormTxManager(db)
	producer := kafka.NewProducer(brokers, logger)
	orphans := application.NewOrphanService(store.Repositories().Orphans(), logger)
	trips := application.NewTravelAgentService(
		store,
		partnerclient.NewFlightClient(flightServer.URL, 2*time.Second, logger),
		partnerclient.NewHotelClient(hotelServer.URL, 2*time.Second, logger),
		saga.NewRunner(5*time.Second, logger),
		orphans,
		producer,
		logger,
	)
	guests := application.NewGuestBookingService(store, producer, logger)

	groupID := fmt.Sprintf("test-travel-%s", uuid.New().String()[:8])
	consumer := travelEvents.NewCompensationEventConsumer(brokers, groupID, orphans, logger)

	return &travelStack{
		Store:       store,
		Trips:       trips,
		Guests:      guests,
		Orphans:     orphans,
		Consumer:    consumer,
		Flights:     flights,
		Hotels:      hotels,
		HotelServer: hotelServer,
		Cleanup: func() {
			_ = producer.Close()
			_ = consumer.Close()
			flightServer.Close()
			hotelServer.Close()
		},
	}
}

// seedCustomerAndTaxi inserts one customer and one taxi.
func seedCustomerAndTaxi(t *testing.T, db *gorm.DB) (customerID, taxiID uuid.UUID) {
	t.Helper()
	now := time.Now().UTC()
	c := repository.CustomerModel{
		ID:          uuid.New(),
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       fmt.Sprintf("ada-%s@example.com", uuid.New().String()[:8]),
		PhoneNumber: "01234567890",
		BirthDate:   time.Date(1990, 12, 10, 0, 0, 0, 0, time.UTC),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(&c).Error, "failed to seed customer")

	tx := repository.TaxiModel{
		ID:                 uuid.New(),
		RegistrationNumber: "T" + uuid.New().String()[:6],
		SeatNumber:         4,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, db.Create(&tx).Error, "failed to seed taxi")
	return c.ID, tx.ID
}

// tripRequest builds a trip for the seeded customer and taxi.
func tripRequest(customerID, taxiID uuid.UUID) application.CreateTripRequest {
	future := time.Now().Add(72 * time.Hour)
	return application.CreateTripRequest{
		Customer:      &application.CustomerRef{ID: customerID},
		TaxiBooking:   application.BookingRequest{TaxiID: taxiID, BookDate: future},
		FlightBooking: partner.FlightBooking{FlightID: 12, CustomerID: 1, FlightDate: future},
		HotelBooking:  partner.HotelBooking{HotelID: 4, CustomerID: 1, BookingDate: future},
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
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
