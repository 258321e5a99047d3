package mq

import (
	"context"
	"encoding/json"
	"fmt"
)

// Queues used by the service.
const (
	QueueOTPDelivery = "otp.delivery"
	QueueOrderPlaced = "orders.placed"
)

// Message is a payload delivered to a subscriber.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Returning an error requeues it.
type Handler func(ctx context.Context, msg Message) error

// Backend is the broker contract.
type Backend interface {
	Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, queue string, handler Handler) error
	Close() error
}

// MQ adds JSON helpers on top of a Backend.
type MQ struct {
	backend Backend
}

func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// PublishJSON encodes v and publishes it to queue.
func (m *MQ) PublishJSON(ctx context.Context, queue string, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s message: %w", queue, err)
	}
	return m.backend.Publish(ctx, queue, data, map[string]string{"content-type": "application/json"})
}

// SubscribeJSON decodes each message into a fresh T before calling fn.
// Messages that cannot be decoded are dropped.
func SubscribeJSON[T any](ctx context.Context, m *MQ, queue string, fn func(ctx context.Context, v T) error) error {
	return m.backend.Subscribe(ctx, queue, func(ctx context.Context, msg Message) error {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return nil
		}
		return fn(ctx, v)
	})
}

func (m *MQ) Close() error {
	return m.backend.Close()
}
