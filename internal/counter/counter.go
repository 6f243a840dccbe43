// Package counter wraps the key-value server used for hit counting.
package counter

import (
	"context"
	"fmt"
	"net/url"
)

// HitsKey is the key incremented on every visit to the index page.
const HitsKey = "hits"

// Counter is an atomic increment-and-return over a named integer.
// Implementations must be safe for concurrent use by multiple goroutines.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	// Ping reports whether the backend is reachable without touching any key.
	Ping(ctx context.Context) error
	Close() error
}

// Open selects a backend from the URL scheme: redis:// and rediss:// dial a
// Redis server, bolt:///path opens an embedded bbolt file.
func Open(rawURL string) (Counter, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("counter url: %w", err)
	}
	switch parsed.Scheme {
	case "redis", "rediss":
		return NewRedis(rawURL)
	case "bolt":
		path := parsed.Path
		if parsed.Host != "" {
			path = parsed.Host + path
		}
		if path == "" {
			return nil, fmt.Errorf("counter url %q has no path", rawURL)
		}
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("counter url scheme %q not supported", parsed.Scheme)
	}
}
