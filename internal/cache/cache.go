// Package cache provides the score cache used by the distance provider. The
// cache is an explicit object handed to the provider, never process-global
// state, so tests can seed and inspect it directly.
package cache

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int

	// Snapshot returns a copy of the current contents
	Snapshot() map[string]T
}
