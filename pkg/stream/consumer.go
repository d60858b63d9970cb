package stream

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Message is a consumed record with its headers flattened to a map.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
}

type Handler func(ctx context.Context, msg Message) error

// reader is the part of *kafka.Reader the consumer drives.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader     reader
	log        *zap.Logger
	attempts   int
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log:        log.With(zap.String("consumer", topic)),
		attempts:   3,
		backoff:    time.Second,
		maxBackoff: 30 * time.Second,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume fetches messages until ctx is done. A message is committed only
// after handler succeeds or rejects it as permanent. Transient failures hold
// the partition and are retried with backoff, so a store outage delays events
// instead of dropping them.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		msg := toMessage(km)
		err = c.handle(ctx, handler, msg)
		if ctx.Err() != nil {
			// leave the offset uncommitted so the message is redelivered
			return nil
		}
		if err != nil {
			c.log.Error("Dropping message rejected as permanent",
				zap.Error(err),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
		}

		if err := c.reader.CommitMessages(ctx, km); err != nil {
			return err
		}
	}
}

// handle runs handler until it succeeds, fails permanently or ctx ends.
func (c *Consumer) handle(ctx context.Context, handler Handler, msg Message) error {
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil || Permanent(err) {
			return err
		}

		fields := []zap.Field{
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		}
		if attempt < c.attempts {
			c.log.Warn("Handler failed, retrying", fields...)
		} else {
			c.log.Error("Handler still failing, holding partition", fields...)
		}

		wait := c.backoff * time.Duration(attempt)
		if c.maxBackoff > 0 {
			wait = min(wait, c.maxBackoff)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// MarkPermanent tells the consumer not to retry err.
func MarkPermanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func Permanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

func toMessage(km kafka.Message) Message {
	headers := make(map[string]string, len(km.Headers))
	for _, h := range km.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Key:       km.Key,
		Value:     km.Value,
		Headers:   headers,
	}
}
