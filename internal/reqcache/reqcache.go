// Package reqcache memoises derived values for the lifetime of one request.
//
// A Cache lives on a context.Context. Values read through it may go stale as
// soon as another request writes, so a Cache must never outlive the request
// that created it, and any write in the same request must Delete the keys it
// affects. With no Cache on the context nothing is memoised.
package reqcache

import (
	"context"
	"sync"
)

type contextKey struct{}

// Cache is a request-scoped key/value store. A nil *Cache is valid and stores nothing.
type Cache struct {
	mu     sync.Mutex
	values map[string]any
}

// New creates an empty Cache
func New() *Cache {
	return &Cache{values: make(map[string]any)}
}

// WithCache returns a copy of ctx carrying c
func WithCache(ctx context.Context, c *Cache) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the Cache on ctx, or nil
func FromContext(ctx context.Context) *Cache {
	c, _ := ctx.Value(contextKey{}).(*Cache)
	return c
}

// Get returns the value stored under key
func (c *Cache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores value under key
func (c *Cache) Set(key string, value any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Delete removes key
func (c *Cache) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Memo returns the value cached under key on ctx, computing and storing it
// with fn on a miss. Errors are never cached.
func Memo[T any](ctx context.Context, key string, fn func() (T, error)) (T, error) {
	c := FromContext(ctx)
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err := fn()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Invalidate removes key from the Cache on ctx, if any
func Invalidate(ctx context.Context, key string) {
	FromContext(ctx).Delete(key)
}
