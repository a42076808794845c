package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/segmentio/kafka-go"
)

// KafkaEventBusConfig holds configuration for the Kafka event bus.
type KafkaEventBusConfig struct {
	GroupID     string
	TopicPrefix string
}

// DefaultKafkaEventBusConfig returns default configuration for KafkaEventBus.
func DefaultKafkaEventBusConfig() *KafkaEventBusConfig {
	return &KafkaEventBusConfig{
		GroupID:     "ledger",
		TopicPrefix: "ledger.events",
	}
}

// KafkaEventBus publishes each event type to its own topic, keyed by the
// event type, and consumes registered types through one consumer group.
type KafkaEventBus struct {
	brokers []string
	writer  *kafka.Writer
	dialer  *kafka.Dialer
	config  *KafkaEventBusConfig
	logger  *slog.Logger

	handlersMtx sync.RWMutex
	handlers    map[string][]eventbus.HandlerFunc

	readersMtx sync.Mutex
	readers    map[string]*kafka.Reader

	topicsMtx sync.Mutex
	topics    map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithKafka creates a new Kafka-backed event bus.
// brokers: comma-separated brokers list (e.g. "localhost:9092,localhost:9093").
func NewWithKafka(
	brokers string,
	logger *slog.Logger,
	config *KafkaEventBusConfig,
) (*KafkaEventBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	if config == nil {
		config = DefaultKafkaEventBusConfig()
	}
	if config.GroupID == "" {
		config.GroupID = "ledger"
	}
	if strings.TrimSpace(config.TopicPrefix) == "" {
		config.TopicPrefix = "ledger.events"
	}
	if logger == nil {
		logger = slog.Default()
	}

	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	b := &KafkaEventBus{
		brokers: parsed,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(parsed...),
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
		},
		dialer:   dialer,
		config:   config,
		logger:   logger.With("bus", "kafka"),
		handlers: make(map[string][]eventbus.HandlerFunc),
		readers:  make(map[string]*kafka.Reader),
		topics:   make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	conn, err := dialer.DialContext(ctx, "tcp", parsed[0])
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()
	return b, nil
}

func (b *KafkaEventBus) topicFor(eventType string) string {
	return channelName(b.config.TopicPrefix, ".", eventType)
}

func (b *KafkaEventBus) dlqTopicFor(eventType string) string {
	return b.topicFor(eventType) + ".dlq"
}

// Emit publishes the event envelope to the topic for its type.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encodeEnvelope(event)
	if err != nil {
		return err
	}
	topic := b.topicFor(event.Type())
	if err := b.ensureTopic(ctx, topic); err != nil {
		return err
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.Type()),
		Value: raw,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	return nil
}

// Register registers an event handler for a specific event type.
func (b *KafkaEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.handlersMtx.Unlock()

	b.ensureConsumer(eventType)
}

func (b *KafkaEventBus) ensureConsumer(eventType string) {
	b.readersMtx.Lock()
	defer b.readersMtx.Unlock()
	if _, ok := b.readers[eventType]; ok {
		return
	}

	topic := b.topicFor(eventType)
	if err := b.ensureTopic(b.ctx, topic); err != nil {
		b.logger.Error("ensure topic failed", "topic", topic, "error", err)
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.config.GroupID,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		Dialer:      b.dialer,
	})
	b.readers[eventType] = reader

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consumeLoop(eventType, reader)
	}()
}

func (b *KafkaEventBus) consumeLoop(eventType string, reader *kafka.Reader) {
	for {
		msg, err := reader.FetchMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			b.logger.Error("consume failed", "event_type", eventType, "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		evt, err := decodeEnvelope(msg.Value)
		if err == nil {
			b.handlersMtx.RLock()
			handlers := append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
			b.handlersMtx.RUnlock()
			err = dispatch(b.ctx, b.logger, evt, handlers)
		}
		if err != nil {
			if dlqErr := b.publishToDLQ(eventType, msg.Value); dlqErr != nil {
				// Leave the offset uncommitted so the message is redelivered.
				b.logger.Error("DLQ publish failed", "event_type", eventType, "error", dlqErr)
				continue
			}
		}
		if err := reader.CommitMessages(b.ctx, msg); err != nil {
			b.logger.Error("commit failed", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
	}
}

func (b *KafkaEventBus) publishToDLQ(eventType string, raw []byte) error {
	topic := b.dlqTopicFor(eventType)
	if err := b.ensureTopic(b.ctx, topic); err != nil {
		return err
	}
	if err := b.writer.WriteMessages(b.ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(eventType),
		Value: raw,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("kafka event bus: dlq publish failed: %w", err)
	}
	b.logger.Warn("message sent to DLQ", "event_type", eventType, "dlq_topic", topic)
	return nil
}

func (b *KafkaEventBus) ensureTopic(ctx context.Context, topic string) error {
	b.topicsMtx.Lock()
	_, exists := b.topics[topic]
	b.topicsMtx.Unlock()
	if exists {
		return nil
	}

	conn, err := b.dialer.DialContext(ctx, "tcp", b.brokers[0])
	if err != nil {
		return fmt.Errorf("kafka event bus: dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("kafka event bus: create topic failed: %w", err)
	}

	b.topicsMtx.Lock()
	b.topics[topic] = struct{}{}
	b.topicsMtx.Unlock()
	return nil
}

// Close stops background consumers and closes network resources.
func (b *KafkaEventBus) Close() error {
	b.cancel()
	b.readersMtx.Lock()
	for _, r := range b.readers {
		_ = r.Close()
	}
	b.readersMtx.Unlock()
	b.wg.Wait()
	return b.writer.Close()
}

func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
