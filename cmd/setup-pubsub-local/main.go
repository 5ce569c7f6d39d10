package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tutorials/internal/config"
	"tutorials/internal/logger"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	// local emulators accept any project id
	defaultLocalProjectID = "tutorials-local"
	eventRetention        = 7 * 24 * time.Hour
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on system environment variables.")
	}

	cfg, err := config.LoadEnv()
	if err != nil {
		l := logger.New("development")
		l.Fatal().Msgf("Failed to load config: %v", err)
	}
	logger := logger.New(cfg.Environment)
	logger.Info().Msg("Starting Pub/Sub setup for the local environment.")

	if cfg.PubSubEmulatorHost == "" {
		logger.Fatal().Msg("PUBSUB_EMULATOR_HOST must be set for local environment.")
	}
	projectID := cfg.GCPProjectID
	if projectID == "" {
		projectID = defaultLocalProjectID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pubsub.NewClient(ctx, projectID,
		option.WithEndpoint(cfg.PubSubEmulatorHost),
		option.WithoutAuthentication(),
	)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Msgf("Failed to close pubsub client: %v", err)
		}
	}()

	if err := resetLocalEmulator(ctx, client, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to reset emulator")
	}
	if err := createResources(ctx, client, logger, cfg.PubSubTutorialTopic, cfg.PubSubTutorialSubscription); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Pub/Sub resources")
	}

	logger.Info().Str("project_id", projectID).Msg("Pub/Sub setup for local environment complete.")
}

// resetLocalEmulator deletes every topic and subscription. Only run it against the emulator.
func resetLocalEmulator(ctx context.Context, client *pubsub.Client, logger zerolog.Logger) error {
	subs := client.Subscriptions(ctx)
	for {
		sub, err := subs.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list subscriptions: %w", err)
		}
		logger.Info().Msgf("Deleting subscription: %s", sub.ID())
		if err := sub.Delete(ctx); err != nil {
			logger.Warn().Err(err).Msgf("Failed to delete subscription %s", sub.ID())
		}
	}

	topics := client.Topics(ctx)
	for {
		topic, err := topics.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list topics: %w", err)
		}
		logger.Info().Msgf("Deleting topic: %s", topic.ID())
		if err := topic.Delete(ctx); err != nil {
			logger.Warn().Err(err).Msgf("Failed to delete topic %s", topic.ID())
		}
	}
	return nil
}

// createResources creates the tutorial event topic, its dead letter topic and
// a pull subscription on each.
func createResources(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, topicID, subID string) error {
	dlqTopic, err := client.CreateTopicWithConfig(ctx, topicID+"-dlq", &pubsub.TopicConfig{RetentionDuration: eventRetention})
	if err != nil {
		return fmt.Errorf("failed to create topic %s-dlq: %w", topicID, err)
	}
	mainTopic, err := client.CreateTopicWithConfig(ctx, topicID, &pubsub.TopicConfig{RetentionDuration: eventRetention})
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topicID, err)
	}
	logger.Info().Str("topic", topicID).Str("dlq_topic", dlqTopic.ID()).Msg("Topics created")

	if _, err := client.CreateSubscription(ctx, subID, pubsub.SubscriptionConfig{
		Topic:       mainTopic,
		AckDeadline: 60 * time.Second,
		RetryPolicy: &pubsub.RetryPolicy{
			MinimumBackoff: 10 * time.Second,
			MaximumBackoff: 600 * time.Second,
		},
		DeadLetterPolicy: &pubsub.DeadLetterPolicy{
			DeadLetterTopic:     dlqTopic.String(),
			MaxDeliveryAttempts: 5,
		},
	}); err != nil {
		return fmt.Errorf("failed to create subscription %s: %w", subID, err)
	}

	dlqSubID := subID + "-dlq"
	if _, err := client.CreateSubscription(ctx, dlqSubID, pubsub.SubscriptionConfig{
		Topic:       dlqTopic,
		AckDeadline: 60 * time.Second,
	}); err != nil {
		return fmt.Errorf("failed to create subscription %s: %w", dlqSubID, err)
	}
	logger.Info().Str("subscription", subID).Str("dlq_subscription", dlqSubID).Msg("Subscriptions created")
	return nil
}
