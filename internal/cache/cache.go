// Package cache stores producer results under namespaced keys so repeated
// runs against the same source reuse earlier work.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// NamespaceScrape prefixes keys written by the scraping stage.
const NamespaceScrape = "scrape"

// Cache is a get/set key-value store. Get reports a missing or expired key
// with ok=false and a nil error; err is reserved for backend failures. Set
// overwrites any existing value for the key.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Purger is implemented by backends that can drop expired entries.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Key joins a producer namespace and an identifier, e.g. "scrape:https://x".
func Key(namespace, id string) string {
	return namespace + ":" + id
}

// GetJSON reads key and decodes it into T. A miss returns ok=false.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var zero T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, eris.Wrapf(err, "cache: decode %s", key)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "cache: encode %s", key)
	}
	return c.Set(ctx, key, raw)
}

// Option configures a cache backend.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL expires entries ttl after they are written. Zero or negative
// disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// expiry returns the absolute expiry for an entry written now, or the zero
// time when entries never expire.
func (o options) expiry() time.Time {
	if o.ttl <= 0 {
		return time.Time{}
	}
	return o.now().Add(o.ttl)
}
