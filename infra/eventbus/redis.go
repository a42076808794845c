package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBusConfig holds configuration for the Redis Streams event bus.
type RedisEventBusConfig struct {
	StreamPrefix string
	Group        string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Block        time.Duration
}

// DefaultRedisEventBusConfig returns the defaults used when no config is given.
func DefaultRedisEventBusConfig() *RedisEventBusConfig {
	return &RedisEventBusConfig{
		StreamPrefix: "ledger.events",
		Group:        "ledger",
		Block:        2 * time.Second,
	}
}

// RedisEventBus publishes each event type to its own Redis stream and
// consumes it through a consumer group, so every registered type is read by
// exactly one consumer loop. Messages whose handlers fail go to a DLQ stream.
type RedisEventBus struct {
	client   *redis.Client
	config   *RedisEventBusConfig
	logger   *slog.Logger
	consumer string

	mu       sync.RWMutex
	handlers map[string][]eventbus.HandlerFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis connects to url and returns a ready bus.
func NewWithRedis(url string, logger *slog.Logger, config *RedisEventBusConfig) (*RedisEventBus, error) {
	if url == "" {
		return nil, fmt.Errorf("redis event bus: url is required")
	}
	if config == nil {
		config = DefaultRedisEventBusConfig()
	}
	if config.StreamPrefix == "" {
		config.StreamPrefix = "ledger.events"
	}
	if config.Group == "" {
		config.Group = "ledger"
	}
	if config.Block <= 0 {
		config.Block = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	if config.PoolSize > 0 {
		opt.PoolSize = config.PoolSize
	}
	if config.DialTimeout > 0 {
		opt.DialTimeout = config.DialTimeout
	}
	if config.ReadTimeout > 0 {
		opt.ReadTimeout = config.ReadTimeout
	}
	if config.WriteTimeout > 0 {
		opt.WriteTimeout = config.WriteTimeout
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	host, _ := os.Hostname()
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:   client,
		config:   config,
		logger:   logger.With("bus", "redis"),
		consumer: fmt.Sprintf("%s-%d-%d", host, os.Getpid(), time.Now().UnixNano()),
		handlers: make(map[string][]eventbus.HandlerFunc),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

func (b *RedisEventBus) streamFor(eventType string) string {
	return channelName(b.config.StreamPrefix, ":", eventType)
}

func (b *RedisEventBus) dlqFor(eventType string) string {
	return b.streamFor(eventType) + ":dlq"
}

// Emit appends the event envelope to the stream for its type.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encodeEnvelope(event)
	if err != nil {
		return err
	}
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.streamFor(event.Type()),
		Values: map[string]any{"event": string(raw)},
	}).Err(); err != nil {
		return fmt.Errorf("redis event bus: emit %s: %w", event.Type(), err)
	}
	return nil
}

// Register adds handler for eventType. The first registration for a type
// creates its consumer group and starts the consumer loop.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	first := len(b.handlers[eventType]) == 0
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
	if !first {
		return
	}

	stream := b.streamFor(eventType)
	err := b.client.XGroupCreateMkStream(b.ctx, stream, b.config.Group, "$").Err()
	if err != nil && !isBusyGroup(err) {
		b.logger.Error("create consumer group failed", "stream", stream, "error", err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(eventType, stream)
	}()
	b.logger.Debug("handler registered", "event_type", eventType, "stream", stream)
}

func (b *RedisEventBus) consume(eventType, stream string) {
	for {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.config.Group,
			Consumer: b.consumer,
			Streams:  []string{stream, ">"},
			Count:    16,
			Block:    b.config.Block,
		}).Result()
		if b.ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("read from stream failed", "stream", stream, "error", err)
				time.Sleep(500 * time.Millisecond)
			}
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				b.handle(eventType, stream, msg)
			}
		}
	}
}

func (b *RedisEventBus) handle(eventType, stream string, msg redis.XMessage) {
	raw, _ := msg.Values["event"].(string)
	evt, err := decodeEnvelope([]byte(raw))
	if err == nil {
		b.mu.RLock()
		handlers := append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
		b.mu.RUnlock()
		err = dispatch(b.ctx, b.logger, evt, handlers)
	}
	if err != nil {
		b.pushToDLQ(eventType, msg, err)
	}
	if err := b.client.XAck(b.ctx, stream, b.config.Group, msg.ID).Err(); err != nil {
		b.logger.Error("ack failed", "stream", stream, "msg_id", msg.ID, "error", err)
	}
}

func (b *RedisEventBus) pushToDLQ(eventType string, msg redis.XMessage, cause error) {
	dlq := b.dlqFor(eventType)
	values := map[string]any{
		"event":  msg.Values["event"],
		"error":  cause.Error(),
		"msg_id": msg.ID,
	}
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("push to DLQ failed", "stream", dlq, "error", err)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq, "msg_id", msg.ID)
}

// Close stops the consumer loops and closes the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
