package ports

import "context"

// ExclusiveAccess serializes operations that share a key.
type ExclusiveAccess interface {
	// WithExclusiveAccess runs op once every earlier operation on key has finished.
	// The key is released when op returns, fails, or panics.
	WithExclusiveAccess(ctx context.Context, key string, op func(ctx context.Context) error) error
}
