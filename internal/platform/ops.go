package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/userkv/pkg/adapters/memory"
	"github.com/aretw0/userkv/pkg/adapters/redis"
	"github.com/aretw0/userkv/pkg/core"
)

// Init opens the store selected by the options and checks that it answers.
// A store that fails the check is closed before the error is returned.
func Init(ctx context.Context, opts ...Option) (core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.store != nil {
		return o.store, nil
	}

	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	var store core.Store
	switch o.config.Adapter {
	case AdapterRedis:
		store = initRedis(o)
	case AdapterMemory:
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.config.Adapter)
	}

	if o.skipPing {
		return store, nil
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		if o.logger != nil {
			o.logger.Error("store unreachable", "adapter", o.config.Adapter, "addr", o.config.Connection.Addr(), "error", err)
		}
		return nil, err
	}
	return store, nil
}

func initRedis(o *options) core.Store {
	conn := o.config.Connection
	return redis.NewStore(redis.Config{
		Addr:        conn.Addr(),
		Username:    conn.Username,
		Password:    conn.Password,
		DB:          conn.DB,
		DialTimeout: o.dialTimeout,
		Logger:      o.logger,
	})
}
