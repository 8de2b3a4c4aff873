// Package cache provides short-lived caching for provider list
// responses. This is a latency/cost optimization over an external
// read, never a correctness mechanism.
package cache

import "context"

type Cache interface {
	// Get unmarshals the cached value into dest and reports whether the
	// key was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}
