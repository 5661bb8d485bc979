// Package messaging describes domain events and the publishers that deliver them.
package messaging

import (
	"context"
)

const (
	ProductUpdatedSubject = "catalog.product.updated"
	ProductDeletedSubject = "catalog.product.deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
