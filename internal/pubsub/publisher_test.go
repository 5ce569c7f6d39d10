package pubsub

import (
	"context"
	"os"
	"testing"
	"time"

	"tutorials/internal/config"

	ps "cloud.google.com/go/pubsub"
	"github.com/stretchr/testify/require"
)

func TestNewPublisherInvalidProject(t *testing.T) {
	cfg := &config.Config{GCPProjectID: ""}
	_, err := NewPublisher(context.Background(), cfg)
	require.Error(t, err, "expected error when project ID is empty")
}

func TestNoopPublisher(t *testing.T) {
	id, err := NoopPublisher{}.Publish(context.Background(), "tutorial-events", []byte("{}"))
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestPublishWithEmulator(t *testing.T) {
	emulator := os.Getenv("PUBSUB_EMULATOR_HOST")
	if emulator == "" {
		t.Skip("PUBSUB_EMULATOR_HOST is not set, skip emulator integration test")
	}

	ctx := context.Background()
	cfg := &config.Config{GCPProjectID: "test-project"}
	pub, err := NewPublisher(ctx, cfg)
	require.NoError(t, err)
	defer pub.Close()

	// Use underlying client to create topic and subscription
	topicName := "tutorial-events-test"
	topic, err := pub.client.CreateTopic(ctx, topicName)
	require.NoError(t, err)
	sub, err := pub.client.CreateSubscription(ctx, "tutorial-events-test-sub", ps.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	msgID, err := pub.Publish(ctx, topicName, []byte(`{"type":"tutorial.created"}`))
	require.NoError(t, err)
	require.NotEmpty(t, msgID)

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	c := make(chan []byte, 1)
	go func() {
		sub.Receive(recvCtx, func(ctx context.Context, m *ps.Message) {
			c <- m.Data
			m.Ack()
			cancel()
		})
	}()

	select {
	case data := <-c:
		require.Equal(t, `{"type":"tutorial.created"}`, string(data))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message from emulator subscription")
	}
}
