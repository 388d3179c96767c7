package logfacade

import (
	"context"
	"fmt"

	"github.com/factorlabs/factordb/db"
)

// Restore rebuilds store and reg from every event the log holds, in id
// order. It is the counterpart to ApplyBatch/Migrate: replay trusts that
// each event was already validated when it was first appended, so ref
// checks are skipped and a replay failure is a hard error rather than a
// rolled-back no-op (spec §4.7 "restore"). Call this once at startup,
// before the Facade serves any traffic. Restore does not clear store or
// reg first: events are replayed on top of whatever they already hold.
func (f *Facade) Restore() error {
	return f.tracer.Span(context.Background(), "logfacade.Restore", func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		events, err := f.log.IterEvents(1, 0)
		if err != nil {
			return err
		}
		for _, e := range events {
			if err := f.replay(e); err != nil {
				return fmt.Errorf("logfacade: restore failed at event %d: %w", e.ID, err)
			}
			f.nextEventID = e.ID
		}
		return nil
	})
}

func (f *Facade) replay(e Event) error {
	switch op := e.Op.(type) {
	case BatchOp:
		ops, _, err := db.Plan(op.Batch, f.store, f.reg)
		if err != nil {
			return err
		}
		_, _, err = f.store.ApplyBatch(ops, nil, true)
		return err

	case MigrateOp:
		if len(op.Migration.Actions) == 0 {
			return nil
		}
		if err := f.reg.ApplyMigration(op.Migration); err != nil {
			return err
		}
		dataOps, err := db.PlanMigrationDataOps(op.Migration, f.store, f.reg)
		if err != nil {
			return err
		}
		if len(dataOps) > 0 {
			if _, _, err := f.store.ApplyBatch(dataOps, nil, true); err != nil {
				return err
			}
		}
		f.migrations = append(f.migrations, op.Migration)
		return nil

	default:
		return fmt.Errorf("logfacade: unknown event op %T", e.Op)
	}
}

// ExportEvents yields every persisted event in id order to cb, holding
// the facade lock for the duration — a consistent snapshot of the log as
// of the call, used to seed a new backend or ship a backup.
func (f *Facade) ExportEvents(cb func(Event) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	events, err := f.log.IterEvents(1, 0)
	if err != nil {
		return err
	}
	for _, e := range events {
		if err := cb(e); err != nil {
			return err
		}
	}
	return nil
}

// RecoverData replays every event into store/reg like Restore, but
// tolerates per-event failures instead of aborting: a corrupt or
// partially-written tail shouldn't lose everything before it. It returns
// the ids of events it could not apply, in the order encountered.
//
// Replay order is simply log order; a separate dependency-toposort pass
// over referencing attributes is unnecessary here, because every replayed
// batch runs with ignoreRefChecks=true — a forward reference to an
// entity created later in the log resolves the same as a backward one,
// since the store imposes no ordering constraint on tuple data itself
// (only RefCheck, which recovery skips, cares about reference direction).
func (f *Facade) RecoverData() ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	events, err := f.log.IterEvents(1, 0)
	if err != nil {
		return nil, err
	}
	var skipped []uint64
	for _, e := range events {
		if err := f.replay(e); err != nil {
			skipped = append(skipped, e.ID)
			continue
		}
		if e.ID > f.nextEventID {
			f.nextEventID = e.ID
		}
	}
	return skipped, nil
}
