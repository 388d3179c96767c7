// Package exec walks a planner.Plan tree and produces the entity ids (or,
// for a plan terminating in Aggregate, the synthetic rows) it selects,
// grounded on the original engine's exec::{Scan,Filter,...} evaluators.
package exec

import (
	"fmt"
	"sort"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/memstore"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/planner"
	"github.com/factorlabs/factordb/queryexpr"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

// Result is what running a Plan against a Store produces: either a list
// of matching entity ids, in plan order, or — when the plan's outermost
// node is Aggregate — a list of synthetic computed rows.
type Result struct {
	IDs       []id.Id
	Synthetic []patch.DataMap
}

// Run evaluates p against store. p is assumed already resolved/optimized
// by planner.Build.
func Run(p planner.Plan, store *memstore.Store) (Result, error) {
	if agg, ok := p.(planner.Aggregate); ok {
		ids, err := runIDs(agg.Input, store)
		if err != nil {
			return Result{}, err
		}
		rows, err := runAggregates(agg.Aggs, ids)
		if err != nil {
			return Result{}, err
		}
		return Result{Synthetic: rows}, nil
	}
	ids, err := runIDs(p, store)
	if err != nil {
		return Result{}, err
	}
	return Result{IDs: ids}, nil
}

// runIDs evaluates every Plan node except the top-level Aggregate, which
// Run handles separately since it changes the row shape.
//
// This walks the tree eagerly rather than through a true lazy iterator
// chain: each node materializes its id slice before returning it to its
// parent. A real deployment under heavy Scan/Sort load would want a
// pull-based iterator protocol instead; this keeps the evaluator's shape
// simple while the id sets it handles stay in memory anyway (the whole
// store is memory-resident).
func runIDs(p planner.Plan, store *memstore.Store) ([]id.Id, error) {
	switch x := p.(type) {
	case planner.EmptyRelation:
		return nil, nil

	case planner.SelectEntity:
		if _, ok := store.TupleRef(x.ID); !ok {
			return nil, nil
		}
		return []id.Id{x.ID}, nil

	case planner.Scan:
		all := store.AllIDs()
		if x.Filter == nil {
			return all, nil
		}
		out := make([]id.Id, 0, len(all))
		for _, eid := range all {
			matched, err := matches(x.Filter, eid, store)
			if err != nil {
				return nil, err
			}
			if matched {
				out = append(out, eid)
			}
		}
		return out, nil

	case planner.Filter:
		input, err := runIDs(x.Input, store)
		if err != nil {
			return nil, err
		}
		out := make([]id.Id, 0, len(input))
		for _, eid := range input {
			matched, err := matches(x.Expr, eid, store)
			if err != nil {
				return nil, err
			}
			if matched {
				out = append(out, eid)
			}
		}
		return out, nil

	case planner.IndexSelect:
		return store.IndexLookup(x.Index, x.Value), nil

	case planner.IndexScan:
		entries := store.IndexEntries(x.Index)
		out := make([]id.Id, 0, len(entries))
		for _, e := range entries {
			if x.From != nil && e.Value.Compare(*x.From) < 0 {
				continue
			}
			if x.Until != nil && e.Value.Compare(*x.Until) > 0 {
				continue
			}
			out = append(out, e.ID)
		}
		if x.Dir == planner.Desc {
			reverse(out)
		}
		return out, nil

	case planner.IndexScanPrefix:
		out := store.IndexScanPrefix(x.Index, x.Prefix)
		if x.Dir == planner.Desc {
			reverse(out)
		}
		return out, nil

	case planner.Merge:
		left, err := runIDs(x.Left, store)
		if err != nil {
			return nil, err
		}
		right, err := runIDs(x.Right, store)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil

	case planner.Sort:
		input, err := runIDs(x.Input, store)
		if err != nil {
			return nil, err
		}
		return sortIDs(x.Sorts, input, store)

	case planner.Limit:
		input, err := runIDs(x.Input, store)
		if err != nil {
			return nil, err
		}
		if x.N < len(input) {
			input = input[:x.N]
		}
		return input, nil

	case planner.Skip:
		input, err := runIDs(x.Input, store)
		if err != nil {
			return nil, err
		}
		if x.N >= len(input) {
			return nil, nil
		}
		return input[x.N:], nil

	case planner.Aggregate:
		return nil, fmt.Errorf("exec: Aggregate is only valid as the outermost plan node")

	default:
		return nil, fmt.Errorf("exec: unhandled plan node %T", p)
	}
}

func matches(expr queryexpr.Expr, eid id.Id, store *memstore.Store) (bool, error) {
	byLocal, ok := store.TupleByLocal(eid)
	if !ok {
		return false, nil
	}
	v, err := queryexpr.Eval(expr, byLocal)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	return ok && bool(b), nil
}

func reverse(ids []id.Id) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}

func sortIDs(sorts []planner.ResolvedSortKey, ids []id.Id, store *memstore.Store) ([]id.Id, error) {
	rows := make([]id.Id, len(ids))
	copy(rows, ids)

	byLocalCache := make(map[id.Id]map[uint32]value.Value, len(ids))
	for _, eid := range ids {
		byLocal, _ := store.TupleByLocal(eid)
		byLocalCache[eid] = byLocal
	}

	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		for _, sk := range sorts {
			a := attrOrUnit(byLocalCache[rows[i]], sk.Local)
			b := attrOrUnit(byLocalCache[rows[j]], sk.Local)
			c := a.Compare(b)
			if sk.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return rows, nil
}

func attrOrUnit(byLocal map[uint32]value.Value, local uint32) value.Value {
	if byLocal == nil {
		return value.Unit{}
	}
	if v, ok := byLocal[local]; ok {
		return v
	}
	return value.Unit{}
}

// runAggregates computes every requested aggregate over ids and folds
// the results into a single synthetic row — the only aggregate currently
// supported is Count, per spec.
func runAggregates(aggs []planner.AggSpec, ids []id.Id) ([]patch.DataMap, error) {
	row := make(patch.DataMap, len(aggs))
	for _, a := range aggs {
		switch a.Kind {
		case planner.CountAgg:
			row[schema.AttrCount] = value.Int(len(ids))
		default:
			return nil, fmt.Errorf("exec: unsupported aggregate kind %v", a.Kind)
		}
	}
	return []patch.DataMap{row}, nil
}
