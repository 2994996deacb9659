package notify

import "context"

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AMQPNotifier publishes notifications with the kind as routing key.
type AMQPNotifier struct {
	pub Publisher
}

func NewAMQPNotifier(pub Publisher) *AMQPNotifier {
	return &AMQPNotifier{pub: pub}
}

func (a *AMQPNotifier) Notify(ctx context.Context, n Notification) error {
	return a.pub.Publish(ctx, string(n.Kind), n)
}
