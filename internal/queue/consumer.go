package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// Consumer listens on the user.registered queue and records every new
// account in the structured log.
type Consumer struct {
	url string
	log *zap.Logger
}

func NewConsumer(url string, log *zap.Logger) *Consumer {
	return &Consumer{url: url, log: log.Named("registration-consumer")}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Dial and
// channel failures are retried with exponential backoff so the API keeps
// serving while the broker is away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := dial(ctx, c.url)
		if err != nil {
			c.log.Warn("dial failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("set qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(UserRegisteredQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(UserRegisteredQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(d.Body); err != nil {
				c.log.Warn("handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // no requeue, avoids a poison loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev UserRegisteredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.UserID == 0 {
		return errors.New("event without user_id")
	}
	c.log.Info("user registered",
		zap.Uint64("user_id", ev.UserID),
		zap.String("role", ev.Role),
		zap.Time("registered_at", ev.RegisteredAt),
	)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
