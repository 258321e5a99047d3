package notify

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/example/bazaar/internal/mq"
)

// Worker drains the delivery queues filled by the API process.
type Worker struct {
	queue  *mq.MQ
	sms    otpSender
	orders orderNotifier
}

func NewWorker(queue *mq.MQ, sms otpSender, orders orderNotifier) *Worker {
	return &Worker{queue: queue, sms: sms, orders: orders}
}

// Run consumes both queues until ctx is cancelled or a subscription fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return mq.SubscribeJSON(ctx, w.queue, mq.QueueOTPDelivery, w.HandleOTP)
	})
	g.Go(func() error {
		return mq.SubscribeJSON(ctx, w.queue, mq.QueueOrderPlaced, w.HandleOrderPlaced)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Worker) HandleOTP(ctx context.Context, msg OTPMessage) error {
	if msg.Phone == "" || msg.Code == "" {
		log.Println("[Worker] dropping malformed otp message")
		return nil
	}
	return w.sms.SendOTP(ctx, msg.Phone, msg.Code)
}

func (w *Worker) HandleOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	return w.orders.OrderPlaced(ctx, event.Order())
}
