package notify

import "context"

// Deliverer sends one notification to an endpoint address. Implementations
// exist per channel; adding a channel means registering another Deliverer,
// the outbox matching logic stays untouched.
type Deliverer interface {
	Deliver(ctx context.Context, address, subject, body string) error
}
