package platform

import (
	"context"

	"github.com/aretw0/userkv/pkg/core"
)

// New opens the configured store and wraps it in a Service.
//
//	svc, err := userkv.New(ctx, userkv.WithAddr("127.0.0.1", 6379))
func New(ctx context.Context, opts ...Option) (*core.Service, error) {
	store, err := Init(ctx, opts...)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return core.NewService(store, o.config.Settings, o.logger), nil
}
