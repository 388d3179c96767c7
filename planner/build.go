package planner

import (
	"github.com/factorlabs/factordb/queryexpr"
	"github.com/factorlabs/factordb/registry"
)

// Build resolves sel's filter and sort keys against reg, wraps a base
// Scan node in Sort/Skip/Limit/Aggregate as requested, and runs the
// optimizer pipeline to a fixpoint.
func Build(sel Select, reg *registry.Registry) (Plan, error) {
	var filter queryexpr.Expr
	if sel.Filter != nil {
		resolved, err := queryexpr.Resolve(sel.Filter, reg)
		if err != nil {
			return nil, err
		}
		filter = resolved
	}

	var p Plan = Scan{Filter: filter}

	if len(sel.Sort) > 0 {
		sorts := make([]ResolvedSortKey, len(sel.Sort))
		for i, sk := range sel.Sort {
			attr, err := reg.ResolveAttrByIdOrIdent(sk.Attr)
			if err != nil {
				return nil, err
			}
			sorts[i] = ResolvedSortKey{Local: attr.LocalID, Desc: sk.Desc}
		}
		p = Sort{Sorts: sorts, Input: p}
	}
	if sel.Offset != nil && *sel.Offset > 0 {
		p = Skip{N: *sel.Offset, Input: p}
	}
	if sel.Limit != nil {
		p = Limit{N: *sel.Limit, Input: p}
	}
	if len(sel.Aggregate) > 0 {
		p = Aggregate{Aggs: sel.Aggregate, Input: p}
	}

	return optimize(p, reg), nil
}

// optimize runs every pass to a fixpoint (bounded, since each pass is
// monotonically shrinking/rewriting a finite tree — a real cycle would
// indicate a planner bug, not a legitimate non-terminating rewrite).
func optimize(p Plan, reg *registry.Registry) Plan {
	const maxPasses = 8
	for i := 0; i < maxPasses; i++ {
		next := foldEntitySelect(p, reg)
		next = foldIndexedAttribute(next, reg)
		next = compileRegex(next)
		if samePlan(next, p) {
			return next
		}
		p = next
	}
	return p
}
