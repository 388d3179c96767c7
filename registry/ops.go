package registry

import (
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/value"
)

// DbOp is one step of the flat operation plan a validate_* call produces,
// ready for the memory store to apply tuple-by-tuple. Concrete types are
// TupleCreate, TupleReplace, TupleMerge and TupleDelete.
type DbOp interface{ dbOp() }

// IndexOp is one index-maintenance step bundled into a tuple op: Insert,
// Replace or Remove against a single index's value map.
type IndexOp interface{ indexOp() }

// IndexInsert adds Value -> entity id to Index. Unique indexes reject a
// duplicate Value.
type IndexInsert struct {
	Index  uint32
	Value  value.Value
	Unique bool
}

// IndexReplace swaps OldValue for Value in Index for the same entity.
type IndexReplace struct {
	Index    uint32
	Value    value.Value
	OldValue value.Value
	Unique   bool
}

// IndexRemove removes Value from Index.
type IndexRemove struct {
	Index uint32
	Value value.Value
}

func (IndexInsert) indexOp()  {}
func (IndexReplace) indexOp() {}
func (IndexRemove) indexOp()  {}

// TupleCreate inserts a brand-new tuple.
type TupleCreate struct {
	ID        id.Id
	Data      patch.DataMap
	IndexOps  []IndexInsert
}

// TupleReplace overwrites a tuple's data wholesale (used by replace and by
// patch, once the patch has been applied to produce the new data map).
type TupleReplace struct {
	ID       id.Id
	Data     patch.DataMap
	IndexOps []IndexOp
}

// TupleMerge shallow-merges Data into the existing tuple (new keys win).
type TupleMerge struct {
	ID       id.Id
	Data     patch.DataMap
	IndexOps []IndexOp
}

// TupleDelete removes a tuple entirely.
type TupleDelete struct {
	ID       id.Id
	IndexOps []IndexRemove
}

func (TupleCreate) dbOp()  {}
func (TupleReplace) dbOp() {}
func (TupleMerge) dbOp()   {}
func (TupleDelete) dbOp()  {}
