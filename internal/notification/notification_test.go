package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/wallet_ledger/internal/money"
)

type fakeProducer struct {
	mu       sync.Mutex
	messages []*kafka.Message
	events   chan kafka.Event
	fail     error
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{events: make(chan kafka.Event, 8)}
}

func (p *fakeProducer) Produce(msg *kafka.Message, _ chan kafka.Event) error {
	if p.fail != nil {
		return p.fail
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakeProducer) Events() chan kafka.Event { return p.events }
func (p *fakeProducer) Flush(int) int             { return 0 }
func (p *fakeProducer) Close()                    { close(p.events) }

func transferEvent() Event {
	return Event{
		Kind:         KindTransferCompleted,
		SenderID:     1,
		ReceiverID:   2,
		Amount:       money.MustParse("100.00"),
		OperationIDs: []int64{10, 11},
		OccurredAt:   time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaNotifierPublishesJSON(t *testing.T) {
	p := newFakeProducer()
	var logs bytes.Buffer
	n := NewKafkaNotifier(p, "wallet.operations", slog.New(slog.NewJSONHandler(&logs, nil)))

	require.NoError(t, n.Send(context.Background(), transferEvent()))

	topic := "wallet.operations"
	p.events <- &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Error: errors.New("broker down")},
		Key:            []byte("1"),
	}
	n.Close(100)

	require.Len(t, p.messages, 1)
	msg := p.messages[0]
	assert.Equal(t, "wallet.operations", *msg.TopicPartition.Topic)
	assert.Equal(t, "1", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, KindTransferCompleted, decoded["kind"])
	assert.Equal(t, "100.00", decoded["amount"])

	assert.Contains(t, logs.String(), "kafka delivery failed")
}

func TestKafkaNotifierReportsProduceError(t *testing.T) {
	p := newFakeProducer()
	p.fail = errors.New("queue full")
	n := NewKafkaNotifier(p, "wallet.operations", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	defer n.Close(0)

	err := n.Send(context.Background(), transferEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
}

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Send(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	ok := &recordingNotifier{}
	broken := &recordingNotifier{err: errors.New("down")}
	var logs bytes.Buffer
	f := Fanout{NewLoggerNotifier(slog.New(slog.NewJSONHandler(&logs, nil))), ok, nil, broken}

	err := f.Send(context.Background(), Event{Kind: KindDepositCompleted, WalletID: 3, Amount: money.MustParse("5.00")})
	require.Error(t, err)
	assert.Len(t, ok.events, 1)
	assert.Len(t, broken.events, 1)
	assert.Contains(t, logs.String(), KindDepositCompleted)
}
