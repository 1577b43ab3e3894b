//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"rentflow/internal/platform/config"
	platformkafka "rentflow/internal/platform/kafka"
	audit "rentflow/pkg/platform/audit"
	"rentflow/pkg/platform/audit/publishers/kafka"
	"rentflow/pkg/testutil/containers"
)

func TestPublishToRedpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	broker := containers.GetManager().GetRedpanda(t)
	topic := "audit-" + uuid.NewString()
	cfg := config.KafkaConfig{Brokers: broker.Brokers, AuditTopic: topic, Partitions: 1, Replication: 1}

	client, err := platformkafka.NewClient(cfg)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, platformkafka.EnsureTopic(ctx, client, topic, cfg.Partitions, cfg.Replication))
	require.NoError(t, platformkafka.EnsureTopic(ctx, client, topic, cfg.Partitions, cfg.Replication), "second ensure is a no-op")

	event := audit.Event{ID: uuid.New(), Subject: "offer:1", Action: string(audit.EventOfferSubmitted)}
	require.NoError(t, kafka.New(client, topic).Publish(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &decoded))
	require.Equal(t, event.ID, decoded.ID)
}
