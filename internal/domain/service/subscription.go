// Package service defines interfaces for external collaborators the
// application layer depends on.
package service

// Subscription is a cancellable handle to a push-notification stream.
// Every subscribe call must be paired with exactly one Unsubscribe tied to
// a well-defined scope (the session lifetime, not a request lifetime); a
// leaked subscription is a stale-role defect, not a crash.
type Subscription interface {
	// Unsubscribe tears the stream down. Safe to call more than once.
	Unsubscribe()
}

// SubscriptionFunc adapts a plain function to the Subscription interface.
type SubscriptionFunc func()

// Unsubscribe implements Subscription.
func (f SubscriptionFunc) Unsubscribe() {
	f()
}
