package port

import "context"

// Notifier delivers the purchase confirmation to the buyer. Called only
// after the purchase transaction has committed.
type Notifier interface {
	SendPurchaseConfirmation(ctx context.Context, to, itemName, buyerLogin string) error
}

// AnalyticsPublisher records a named event with arbitrary payload fields.
type AnalyticsPublisher interface {
	Publish(ctx context.Context, event string, fields map[string]any) error
}

// EffectsDispatcher runs post-commit side effects off the request path.
// Submit must never block the caller and never return an error into it;
// effect failures are logged inside the dispatcher.
type EffectsDispatcher interface {
	Submit(effect func())
}

// EnhancementQueue accepts fire-and-forget description enhancement tasks.
// Enqueue never blocks: when the queue is full the task is dropped.
type EnhancementQueue interface {
	Enqueue(task EnhancementTask) bool
}

type EnhancementTask struct {
	ItemID      string
	Name        string
	Description string
}

// IdentityAssigner supplies an externally assigned display identity, used by
// deployments that stamp purchases with a third-party login instead of the
// session's own.
type IdentityAssigner interface {
	AssignLogin(ctx context.Context) (string, error)
}
