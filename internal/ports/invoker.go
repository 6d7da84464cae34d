package ports

import (
	"context"

	"github.com/harris-mohamed/sensorsync/internal/domain"
)

// Invoker runs one sync invocation for one endpoint. Callers serialize
// invocations for the same endpoint name.
type Invoker interface {
	Invoke(ctx context.Context, ep domain.Endpoint) (domain.Result, error)
}

// Syncer is the per-kind half of an invocation.
type Syncer interface {
	Sync(ctx context.Context, ep domain.Endpoint) (domain.Result, error)
}
