package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events to RabbitMQ.  Each publish opens its own
// connection so a broker outage never leaves a stale channel behind.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log.Named("publisher")}
}

// PublishUserRegistered publishes ev to the user.registered queue as a
// persistent JSON message.  Errors are logged and returned so the caller
// can choose to ignore them.
func (p *Publisher) PublishUserRegistered(ctx context.Context, ev UserRegisteredEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("marshal event failed", zap.Error(err))
		return err
	}
	return p.publish(ctx, UserRegisteredQueue, body)
}

func (p *Publisher) publish(ctx context.Context, queueName string, body []byte) error {
	conn, err := dial(ctx, p.url)
	if err != nil {
		p.log.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Warn("queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Warn("publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}
