// Package cache stores rendered diagram artifacts.
//
// Rendering a high-DPI diagram through Graphviz takes noticeable time, so the
// pipeline keys finished artifacts on the DOT source hash and reuses them on
// the next run. Several backends implement [Cache]:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: JSON entries under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance (github.com/redis/go-redis/v9)
//   - [MongoCache]: a MongoDB collection with a TTL index (go.mongodb.org/mongo-driver)
//
// [Open] selects a backend from [Options], usually filled from the config file.
//
// Keys are produced by a [Keyer] so callers never build key strings by hand:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(cache.Hash(dot), cache.ArtifactKeyOpts{Engine: "graphviz", Format: "png"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	// TTLArtifact is how long rendered images stay cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached data and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a rendered artifact of the DOT source
	// with the given hash.
	ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds everything besides the source that affects the
// rendered bytes.
type ArtifactKeyOpts struct {
	Engine string `json:"engine"`
	Layout string `json:"layout,omitempty"`
	Format string `json:"format"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return artifactKey(sourceHash, opts)
}

var _ Keyer = DefaultKeyer{}
