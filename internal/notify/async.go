package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Async detaches delivery from the caller. Notify always returns nil;
// sink failures are logged.
type Async struct {
	next    Notifier
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next Notifier, logger *zap.Logger, timeout time.Duration) *Async {
	return &Async{next: next, logger: logger, timeout: timeout}
}

func (a *Async) Notify(ctx context.Context, n Notification) error {
	// The request context is cancelled as soon as the handler returns.
	base := context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(base, a.timeout)
		defer cancel()
		if err := a.next.Notify(ctx, n); err != nil {
			a.logger.Warn("notification delivery failed",
				zap.String("kind", string(n.Kind)),
				zap.Uint("registration_id", n.RegistrationID),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish.
func (a *Async) Wait() {
	a.wg.Wait()
}
