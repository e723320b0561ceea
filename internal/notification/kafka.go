package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// producer is the subset of *kafka.Producer used here.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	Flush(timeoutMs int) int
	Close()
}

// KafkaNotifier publishes events as JSON to a Kafka topic keyed by wallet id.
type KafkaNotifier struct {
	producer producer
	topic    string
	logger   *slog.Logger
	done     chan struct{}
}

// NewKafkaNotifier wraps p and starts draining its delivery reports.
func NewKafkaNotifier(p producer, topic string, logger *slog.Logger) *KafkaNotifier {
	n := &KafkaNotifier{producer: p, topic: topic, logger: logger, done: make(chan struct{})}
	go n.watchDeliveries()
	return n
}

func (n *KafkaNotifier) watchDeliveries() {
	defer close(n.done)
	for e := range n.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				n.logger.Error("kafka delivery failed",
					slog.String("topic", n.topic),
					slog.String("key", string(ev.Key)),
					slog.Any("error", ev.TopicPartition.Error))
			}
		case kafka.Error:
			n.logger.Warn("kafka producer error", slog.Any("error", ev))
		}
	}
}

// Send enqueues the event; delivery is reported asynchronously.
func (n *KafkaNotifier) Send(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	topic := n.topic
	err = n.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.FormatInt(event.Key(), 10)),
		Value:          payload,
		Headers:        []kafka.Header{{Key: "kind", Value: []byte(event.Kind)}},
	}, nil)
	if err != nil {
		return fmt.Errorf("produce %s: %w", event.Kind, err)
	}
	return nil
}

// Close flushes outstanding messages and shuts the producer down.
func (n *KafkaNotifier) Close(timeoutMs int) {
	if left := n.producer.Flush(timeoutMs); left > 0 {
		n.logger.Warn("kafka flush incomplete", slog.Int("pending", left))
	}
	n.producer.Close()
	<-n.done
}
