// Package delivery defines the contract every transport boundary satisfies.
package delivery

import "context"

// Delivery is a serving boundary (HTTP server, worker, ...) managed by the
// application lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
