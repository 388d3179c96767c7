package logfacade

import (
	"context"
	"sync"

	"github.com/factorlabs/factordb/db"
	"github.com/factorlabs/factordb/dberr"
	"github.com/factorlabs/factordb/exec"
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/internal/otelx"
	"github.com/factorlabs/factordb/memstore"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/planner"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

// identIndexIdent is the builtin unique index on factor/ident, the
// lookup path every ident-form IdOrIdent reference resolves through.
const identIndexIdent = "factor/index_ident"

// DbSchema is a read-only snapshot of the live catalog, returned by
// Facade.Schema.
type DbSchema struct {
	Attributes []*schema.Attribute
	Classes    []*schema.Class
	Indexes    []*schema.Index
}

// Facade is the public entry point: a Memory Store (registry + memstore)
// plus an event log. Every mutating call — ApplyBatch, Migrate,
// PurgeAllData — holds mu for its duration so the log append and the
// store mutation commit as one step; reads other than Migrations go
// straight to the store's own lock and never wait on mu.
type Facade struct {
	mu sync.Mutex

	store  *memstore.Store
	reg    *registry.Registry
	log    LogStore
	tracer otelx.Tracer

	nextEventID uint64
	migrations  []registry.Migration
}

// New wires reg, store and log together. Call Restore to populate store
// from an existing log before serving traffic.
func New(reg *registry.Registry, store *memstore.Store, log LogStore) *Facade {
	return &Facade{store: store, reg: reg, log: log}
}

// WithTracer attaches a tracer to f, used to span ApplyBatch, Migrate and
// Restore. A Facade built via New alone traces nothing.
func (f *Facade) WithTracer(t otelx.Tracer) *Facade {
	f.tracer = t
	return f
}

// Entity returns ref's current data, or EntityNotFound.
func (f *Facade) Entity(ref id.IdOrIdent) (patch.DataMap, error) {
	eid, err := f.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	data, ok := f.store.Get(eid)
	if !ok {
		return nil, dberr.NotFound(dberr.EntityNotFound, eid.String(), nil)
	}
	return data, nil
}

// EntityOpt returns ref's current data, or (nil, false) if absent —
// never an error for a missing entity (an unresolvable ident is still an
// error, since there is no id to report absent).
func (f *Facade) EntityOpt(ref id.IdOrIdent) (patch.DataMap, bool, error) {
	eid, err := f.resolveRef(ref)
	if err != nil {
		return nil, false, err
	}
	data, ok := f.store.Get(eid)
	return data, ok, nil
}

func (f *Facade) resolveRef(ref id.IdOrIdent) (id.Id, error) {
	if eid, ok := ref.Id(); ok {
		return eid, nil
	}
	ident, _ := ref.Ident()
	idx, err := f.reg.IndexByIdent(identIndexIdent)
	if err != nil {
		return id.Nil, err
	}
	ids := f.store.IndexLookup(idx.LocalID, value.String(ident))
	if len(ids) == 0 {
		return id.Nil, dberr.NotFound(dberr.EntityNotFound, ident, nil)
	}
	return ids[0], nil
}

// Select runs sel against the live store and returns a page of entity
// ids with their data, or the synthetic aggregate rows if sel specifies
// an aggregate.
func (f *Facade) Select(sel planner.Select) (Page, error) {
	p, err := planner.Build(sel, f.reg)
	if err != nil {
		return Page{}, err
	}
	result, err := exec.RunTraced(context.Background(), f.tracer, p, f.store)
	if err != nil {
		return Page{}, err
	}
	if result.Synthetic != nil {
		return Page{Items: result.Synthetic}, nil
	}
	items := make([]patch.DataMap, 0, len(result.IDs))
	for _, eid := range result.IDs {
		if data, ok := f.store.Get(eid); ok {
			items = append(items, data)
		}
	}
	return Page{Items: items}, nil
}

// SelectMap is Select without pagination bookkeeping — just the matching
// rows.
func (f *Facade) SelectMap(sel planner.Select) ([]patch.DataMap, error) {
	page, err := f.Select(sel)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Page is Select's result: the matching rows (real entities or synthetic
// aggregate rows). Select does not paginate, so NextCursor is always nil.
type Page struct {
	Items      []patch.DataMap
	NextCursor *string
}

// ApplyBatch plans b, applies it to the store, and appends the
// committing event to the log. On log-append failure the store change
// is rolled back and the original error is returned.
func (f *Facade) ApplyBatch(b db.Batch) error {
	return f.tracer.Span(context.Background(), "logfacade.ApplyBatch", func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		ops, refs, err := db.Plan(b, f.store, f.reg)
		if err != nil {
			return err
		}
		reverts, epoch, err := f.store.ApplyBatch(ops, refs, false)
		if err != nil {
			return err
		}
		if err := f.appendEvent(BatchOp{Batch: b}); err != nil {
			if rerr := f.store.RevertChanges(epoch, reverts); rerr != nil {
				return rerr
			}
			return err
		}
		return nil
	})
}

// Migrate applies m's schema actions, carries forward any data
// consequences, and appends the committing event. A migration whose
// schema actions and resulting data ops are both empty is a no-op and
// never reaches the log, per spec §4.7.
func (f *Facade) Migrate(m registry.Migration) error {
	return f.tracer.Span(context.Background(), "logfacade.Migrate", func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		if len(m.Actions) == 0 {
			return nil
		}
		if err := f.reg.ApplyMigration(m); err != nil {
			return err
		}
		dataOps, err := db.PlanMigrationDataOps(m, f.store, f.reg)
		if err != nil {
			return err
		}
		var epoch uint64
		var reverts []memstore.RevertOp
		if len(dataOps) > 0 {
			reverts, epoch, err = f.store.ApplyBatch(dataOps, nil, true)
			if err != nil {
				return err
			}
		}
		if err := f.appendEvent(MigrateOp{Migration: m}); err != nil {
			if len(dataOps) > 0 {
				if rerr := f.store.RevertChanges(epoch, reverts); rerr != nil {
					return rerr
				}
			}
			return err
		}
		f.migrations = append(f.migrations, m)
		return nil
	})
}

func (f *Facade) appendEvent(op EventOp) error {
	eventID := f.nextEventID + 1
	if err := f.log.WriteEvent(Event{ID: eventID, Op: op}); err != nil {
		return err
	}
	f.nextEventID = eventID
	return nil
}

// PurgeAllData discards every tuple, index entry and migration record,
// clears the log, and resets the registry to its builtins.
func (f *Facade) PurgeAllData() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.log.Clear(); err != nil {
		return err
	}
	f.store.PurgeAllData()
	f.reg.Reset()
	f.nextEventID = 0
	f.migrations = nil
	return nil
}

// Schema returns a read-only snapshot of the live catalog.
func (f *Facade) Schema() DbSchema {
	return DbSchema{
		Attributes: f.reg.Attributes(),
		Classes:    f.reg.Classes(),
		Indexes:    f.reg.Indexes(),
	}
}

// Migrations returns every migration applied so far, in apply order —
// the log variant's replay history (spec §6).
func (f *Facade) Migrations() []registry.Migration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]registry.Migration, len(f.migrations))
	copy(out, f.migrations)
	return out
}
