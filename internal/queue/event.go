// Package queue defines message payloads exchanged over the message broker
// together with the publisher and consumer that move them.
package queue

import "time"

// UserRegisteredQueue is the durable queue carrying registration events.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published once a new account has been stored.
// It carries enough for downstream consumers to greet or index the user
// without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}
