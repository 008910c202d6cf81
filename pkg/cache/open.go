package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend string

	// Dir is the FileCache directory.
	Dir string

	// RedisURL configures RedisCache.
	RedisURL string

	// KeyPrefix scopes the keys of the Redis and MongoDB backends.
	KeyPrefix string

	// MongoURI, MongoDatabase and MongoCollection configure MongoCache.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open returns the cache described by opts.
// An empty backend selects the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendNone, "null", "off":
		return NewNullCache(), nil
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis cache: url is required")
		}
		return NewRedisCache(ctx, opts.RedisURL, opts.KeyPrefix)
	case BackendMongo, "mongodb":
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache: uri is required")
		}
		db, coll := opts.MongoDatabase, opts.MongoCollection
		if db == "" {
			db = "snhsdiag"
		}
		if coll == "" {
			coll = "artifacts"
		}
		return NewMongoCache(ctx, opts.MongoURI, db, coll, opts.KeyPrefix)
	}
	return nil, fmt.Errorf("%w: %q (must be one of: none, file, redis, mongo)", ErrUnknownBackend, opts.Backend)
}
