package queue

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// maxDialTimeout caps the TCP connect and AMQP handshake of one dial.
const maxDialTimeout = 3 * time.Second

// dial connects to url, giving up after maxDialTimeout or when ctx expires,
// whichever comes first.  amqp.Dial alone ignores ctx.
func dial(ctx context.Context, url string) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := maxDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}
