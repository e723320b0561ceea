package infra

import (
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// NewKafkaProducer connects a producer to the given bootstrap servers.
func NewKafkaProducer(servers, clientID string) (*kafka.Producer, error) {
	if servers == "" {
		return nil, fmt.Errorf("kafka bootstrap servers are required")
	}
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  servers,
		"client.id":          clientID,
		"acks":               "all",
		"enable.idempotence": true,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}
