package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/replybot/internal/models"
)

// KafkaPublisher sends comment performance reports to a topic, keyed by
// comment id.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(broker, topic string) (*KafkaPublisher, error) {
	slog.Info("[KafkaPublisher] Connecting to Kafka", slog.String("broker", broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaPublisher] failed to create producer: %w", err)
	}

	slog.Info("[KafkaPublisher] Kafka Producer initialized", slog.String("topic", topic))
	return &KafkaPublisher{producer: p, topic: topic}, nil
}

func (kp *KafkaPublisher) Publish(ctx context.Context, report models.CommentReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("[KafkaPublisher] failed to marshal report: %w", err)
	}

	delivery := make(chan kafka.Event, 1)
	err = kp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &kp.topic, Partition: kafka.PartitionAny},
		Key:            []byte(report.CommentID),
		Value:          payload,
	}, delivery)
	if err != nil {
		return fmt.Errorf("[KafkaPublisher] produce failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaPublisher] delivery failed: %w", m.TopicPartition.Error)
		}
	}

	slog.Info("[KafkaPublisher] Published report",
		slog.String("topic", kp.topic),
		slog.String("comment_id", report.CommentID))
	return nil
}

func (kp *KafkaPublisher) Close() {
	kp.producer.Flush(1000)
	kp.producer.Close()
	slog.Info("[KafkaPublisher] Kafka producer shut down")
}
