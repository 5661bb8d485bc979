package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/messaging/events"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "CATALOG_SVC_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

// PublisherSuite publishes product events into a real JetStream server.
type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	natsContainer *tcnats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.natsContainer, err = tcnats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")
	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if s.natsContainer != nil {
		_ = testcontainers.TerminateContainer(s.natsContainer)
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestPublish_StoresEventInStream() {
	// given
	prefix := "it" + uuid.NewString()[:8]
	stream := "CATALOG_" + prefix
	subject := prefix + "." + messaging.ProductDeletedSubject
	s.Require().NoError(EnsureStream(s.ctx, s.js, stream, subject))
	// ensuring twice updates the stream in place
	s.Require().NoError(EnsureStream(s.ctx, s.js, stream, subject))

	event := events.ProductDeletedEvent{
		ProductID:   uuid.New(),
		Collections: []uuid.UUID{uuid.New()},
		DeletedAt:   time.Now().UTC().Truncate(time.Second),
	}

	// when
	err := NewNatsPublisher(s.js, prefix).Publish(s.ctx, event)

	// then
	s.Require().NoError(err)
	consumer, err := s.js.CreateOrUpdateConsumer(s.ctx, stream, jetstream.ConsumerConfig{AckPolicy: jetstream.AckExplicitPolicy})
	s.Require().NoError(err)
	msg, err := consumer.Next(jetstream.FetchMaxWait(5 * time.Second))
	s.Require().NoError(err)
	s.Equal(subject, msg.Subject())

	var got events.ProductDeletedEvent
	s.Require().NoError(json.Unmarshal(msg.Data(), &got))
	s.Equal(event.ProductID, got.ProductID)
	s.Equal(event.Collections, got.Collections)
	s.True(event.DeletedAt.Equal(got.DeletedAt))
	s.NoError(msg.Ack())
}

func (s *PublisherSuite) TestPublish_WithoutStreamFails() {
	event := events.ProductDeletedEvent{ProductID: uuid.New()}

	err := NewNatsPublisher(s.js, "nostream"+uuid.NewString()[:8]).Publish(s.ctx, event)

	s.Error(err)
}
