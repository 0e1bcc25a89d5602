// Package delivery defines the contract every transport-facing server
// in this application satisfies.
package delivery

import "context"

// Delivery is a long-running server started by the application entry
// point. Serve blocks until the server stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
