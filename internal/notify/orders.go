package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/mq"
)

type orderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
}

// OrderPlacedEvent is the queued form of a placed order.
type OrderPlacedEvent struct {
	OrderID  uuid.UUID         `json:"orderId"`
	UserID   uuid.UUID         `json:"userId"`
	PlacedAt time.Time         `json:"placedAt"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Items    []OrderPlacedLine `json:"items"`
}

type OrderPlacedLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

func NewOrderPlacedEvent(order *models.Order) OrderPlacedEvent {
	event := OrderPlacedEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		PlacedAt: order.PlacedAt,
		Subtotal: order.Subtotal,
		Items:    make([]OrderPlacedLine, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, OrderPlacedLine{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return event
}

// Order rebuilds the order snapshot carried by the event.
func (e OrderPlacedEvent) Order() *models.Order {
	order := &models.Order{
		UserID:   e.UserID,
		Status:   models.OrderStatusPlaced,
		PlacedAt: e.PlacedAt,
		Subtotal: e.Subtotal,
	}
	order.ID = e.OrderID
	for _, line := range e.Items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:   e.OrderID,
			ProductID: line.ProductID,
			Title:     line.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	return order
}

// QueueNotifier publishes placed orders for the worker.
type QueueNotifier struct {
	queue jsonPublisher
}

func NewQueueNotifier(queue jsonPublisher) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) OrderPlaced(ctx context.Context, order *models.Order) error {
	_, err := n.queue.PublishJSON(ctx, mq.QueueOrderPlaced, NewOrderPlacedEvent(order))
	return err
}

// AsyncNotifier runs the wrapped notifier in the background.
type AsyncNotifier struct {
	next    orderNotifier
	timeout time.Duration
}

func NewAsyncNotifier(next orderNotifier, timeout time.Duration) *AsyncNotifier {
	return &AsyncNotifier{next: next, timeout: timeout}
}

func (a *AsyncNotifier) OrderPlaced(ctx context.Context, order *models.Order) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.OrderPlaced(ctx, order); err != nil {
			log.Printf("[Order] background notification for %s failed: %v", order.ID, err)
		}
	}()
	return nil
}

// Fanout calls every notifier and joins their errors.
type Fanout []orderNotifier

func (f Fanout) OrderPlaced(ctx context.Context, order *models.Order) error {
	var errs []error
	for _, n := range f {
		if err := n.OrderPlaced(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
