// Package planner turns a Select request into a Plan tree and runs a
// fixed optimizer pipeline to a fixpoint, grounded on the original
// engine's plan::{build,optimizers} modules.
package planner

import (
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/queryexpr"
	"github.com/factorlabs/factordb/value"
)

// Direction orders an IndexScan/IndexScanPrefix walk.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// SortKey orders Sort output by one attribute, as given by the caller
// (before local-id resolution).
type SortKey struct {
	Attr id.IdOrIdent
	Desc bool
}

// ResolvedSortKey is a SortKey after its attribute has been resolved to a
// registry local id, the form the Sort plan node and the executor use.
type ResolvedSortKey struct {
	Local uint32
	Desc  bool
}

// AggKind enumerates supported aggregates — currently only Count, per
// spec §4.6.
type AggKind int

const CountAgg AggKind = 0

// AggSpec is one aggregate to compute.
type AggSpec struct{ Kind AggKind }

// Select is the planner's input: an optional filter, sort/aggregate
// specs, and paging parameters.
type Select struct {
	Filter   queryexpr.Expr // may be nil (matches everything)
	Sort     []SortKey
	Aggregate []AggSpec
	Limit    *int
	Offset   *int
	Cursor   *string
}

// Plan is a node in the query plan tree. Concrete types are
// EmptyRelation, SelectEntity, Scan, Filter, Limit, Skip, Merge,
// IndexSelect, IndexScan, IndexScanPrefix, Sort and Aggregate.
type Plan interface{ plan() }

type EmptyRelation struct{}

type SelectEntity struct{ ID id.Id }

type Scan struct{ Filter queryexpr.Expr } // nil Filter matches everything

type Filter struct {
	Expr  queryexpr.Expr
	Input Plan
}

type Limit struct {
	N     int
	Input Plan
}

type Skip struct {
	N     int
	Input Plan
}

type Merge struct{ Left, Right Plan }

type IndexSelect struct {
	Index uint32
	Value value.Value
}

type IndexScan struct {
	Index      uint32
	From, Until *value.Value
	Dir        Direction
}

type IndexScanPrefix struct {
	Index  uint32
	Prefix string
	Dir    Direction
}

type Sort struct {
	Sorts []ResolvedSortKey
	Input Plan
}

type Aggregate struct {
	Aggs  []AggSpec
	Input Plan
}

func (EmptyRelation) plan()   {}
func (SelectEntity) plan()    {}
func (Scan) plan()            {}
func (Filter) plan()          {}
func (Limit) plan()           {}
func (Skip) plan()            {}
func (Merge) plan()           {}
func (IndexSelect) plan()     {}
func (IndexScan) plan()       {}
func (IndexScanPrefix) plan() {}
func (Sort) plan()            {}
func (Aggregate) plan()       {}
