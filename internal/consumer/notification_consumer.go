package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Eursukkul/race-registration/internal/notify"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NotificationConsumer feeds registration notifications from the broker to
// the delivery sinks. Delivery is tracked per sink: a sink that succeeded is
// never called again for the same message.
type NotificationConsumer struct {
	sinks   []notify.Notifier
	logger  *zap.Logger
	timeout time.Duration
	retries int
	backoff time.Duration
}

func NewNotificationConsumer(sinks []notify.Notifier, logger *zap.Logger, timeout time.Duration) *NotificationConsumer {
	return &NotificationConsumer{
		sinks:   sinks,
		logger:  logger,
		timeout: timeout,
		retries: 2,
		backoff: 2 * time.Second,
	}
}

// Run processes deliveries until msgs is closed or ctx is cancelled.
func (nc *NotificationConsumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				nc.logger.Info("delivery channel closed, stopping consumer")
				return
			}
			nc.handleMessage(ctx, msg)
		}
	}
}

func (nc *NotificationConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var n notify.Notification
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		nc.logger.Error("failed to unmarshal notification", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}
	if n.Kind == "" {
		n.Kind = notify.Kind(msg.RoutingKey)
	}

	failed := nc.deliver(ctx, n)
	switch {
	case len(failed) == 0:
		nc.logger.Info("notification delivered",
			zap.String("kind", string(n.Kind)),
			zap.Uint("registration_id", n.RegistrationID),
		)
		_ = msg.Ack(false)

	case len(failed) == len(nc.sinks):
		// Nothing went out, so a redelivery cannot duplicate anything.
		// A message that already came back is dropped.
		requeue := !msg.Redelivered
		nc.logger.Warn("failed to deliver notification",
			zap.String("kind", string(n.Kind)),
			zap.Uint("registration_id", n.RegistrationID),
			zap.Bool("requeue", requeue),
		)
		_ = msg.Nack(false, requeue)

	default:
		// Requeueing would resend through the sinks that already succeeded.
		nc.logger.Error("notification dropped for failed sinks",
			zap.String("kind", string(n.Kind)),
			zap.Uint("registration_id", n.RegistrationID),
			zap.Strings("sinks", failed),
		)
		_ = msg.Ack(false)
	}
}

// deliver tries every sink, retrying the failing ones in process, and returns
// the names of the sinks that still failed.
func (nc *NotificationConsumer) deliver(ctx context.Context, n notify.Notification) []string {
	pending := make([]int, len(nc.sinks))
	for i := range pending {
		pending[i] = i
	}

	for attempt := 0; attempt <= nc.retries && len(pending) > 0; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nc.names(pending)
			case <-time.After(nc.backoff):
			}
		}

		var still []int
		for _, i := range pending {
			if err := nc.send(ctx, nc.sinks[i], n); err != nil {
				nc.logger.Warn("sink delivery failed",
					zap.String("sink", sinkName(nc.sinks[i])),
					zap.Int("attempt", attempt+1),
					zap.Uint("registration_id", n.RegistrationID),
					zap.Error(err),
				)
				still = append(still, i)
			}
		}
		pending = still
	}
	return nc.names(pending)
}

func (nc *NotificationConsumer) send(ctx context.Context, sink notify.Notifier, n notify.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, nc.timeout)
	defer cancel()
	return sink.Notify(ctx, n)
}

func (nc *NotificationConsumer) names(idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = sinkName(nc.sinks[j])
	}
	return out
}

func sinkName(sink notify.Notifier) string {
	return fmt.Sprintf("%T", sink)
}
