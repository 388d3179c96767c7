package exec

import (
	"context"

	"github.com/factorlabs/factordb/internal/otelx"
	"github.com/factorlabs/factordb/memstore"
	"github.com/factorlabs/factordb/planner"
)

// RunTraced is Run wrapped in a span named "exec.Run" when t is non-zero,
// for a caller (logfacade.Facade.Select) that wants query execution
// visible in the same trace as the mutating calls it wraps with
// otelx.Tracer.Span.
func RunTraced(ctx context.Context, t otelx.Tracer, p planner.Plan, store *memstore.Store) (Result, error) {
	var result Result
	err := t.Span(ctx, "exec.Run", func(context.Context) error {
		r, err := Run(p, store)
		result = r
		return err
	})
	return result, err
}
