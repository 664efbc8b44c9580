// Package tokenstore persists the opaque bearer token across process
// restarts. It is the only state in the SDK that survives a restart; the
// contract is a single cell with get, set (empty clears), and clear.
package tokenstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no token is persisted.
var ErrNotFound = errors.New("token not found")

// Store is the persistence boundary for the session token. Implementations
// must be safe for concurrent use; the Manager serializes logical access but
// callers may probe a store directly.
//
// Set with an empty token is equivalent to Clear, mirroring the host
// platforms' null-clears secure-storage semantics.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
