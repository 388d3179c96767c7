// Package logfacade wraps a Memory Store (registry + memstore) with a
// durable event log: every apply_batch/migrate call appends an Event
// before it is considered committed, and the log can rebuild the store
// from scratch on startup. Grounded on the original engine's log facade
// (spec §4.7) and the teacher's storage/disk write-ahead patterns,
// adapted from a KV changelog to FactorDB's Batch/Migration events.
package logfacade

import (
	"github.com/factorlabs/factordb/db"
	"github.com/factorlabs/factordb/registry"
)

// EventOp is the payload of one logged Event: a mutating Batch or a
// schema Migration.
type EventOp interface{ eventOp() }

// BatchOp logs a db.Batch exactly as apply_batch received it — replaying
// it re-derives the same DbOps, since db.Plan is a pure function of the
// batch and the store's state at replay time.
type BatchOp struct{ Batch db.Batch }

// MigrateOp logs a registry.Migration exactly as migrate received it.
type MigrateOp struct{ Migration registry.Migration }

func (BatchOp) eventOp()   {}
func (MigrateOp) eventOp() {}

// Event is one persisted log record. IDs are strictly monotonic from 1.
type Event struct {
	ID uint64
	Op EventOp
}

// LogStore is the pluggable durability backend a Facade wraps. Iteration
// is synchronous rather than a true stream — every implementation in
// this tree holds its event set in a form cheap to slice in memory
// (an in-process list, a single local file read at startup, or a local
// badger database).
type LogStore interface {
	IterEvents(from, until uint64) ([]Event, error)
	ReadEvent(id uint64) (Event, bool, error)
	WriteEvent(e Event) error
	Clear() error
	SizeLog() (int, error)
	SizeData() (int, error)
}
