package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by New.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Directory  string
	TTLSeconds int
	Redis      RedisOptions
}

// New builds the Store described by opts. BackendNone (or an empty backend with no
// directory) yields a disabled FileStore. The returned close function releases
// backend connections and is never nil.
func New(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	ttl := opts.TTLSeconds
	if ttl == 0 {
		ttl = DefaultTTLSeconds
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendNone:
		store, _ := NewFileStore("", false, ttl)
		return store, noop, nil
	case "", BackendFile:
		if opts.Directory == "" {
			store, _ := NewFileStore("", false, ttl)
			return store, noop, nil
		}
		store, err := NewFileStore(opts.Directory, true, ttl)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case BackendRedis:
		client, err := NewRedisClient(ctx, opts.Redis)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisStore(client, opts.Redis.Prefix, ttl), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q (want file, redis or none)", opts.Backend)
	}
}
