// Package badgerstore is a durable LogStore backed by a badger key-value
// database, one event per key (big-endian uint64 id), grounded on the
// teacher's storage/disk badger.Open/Update usage adapted from OPA's
// partitioned-path keys to a flat event-id keyspace.
package badgerstore

import (
	"encoding/binary"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/factorlabs/factordb/logfacade"
	"github.com/factorlabs/factordb/logstore/codec"
)

// Store is a LogStore backed by a badger.DB at a caller-supplied
// directory.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database at dir.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func eventKey(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func keyEventID(k []byte) uint64 { return binary.BigEndian.Uint64(k) }

func (s *Store) IterEvents(from, until uint64) ([]logfacade.Event, error) {
	var out []logfacade.Event
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(eventKey(from)); it.Valid(); it.Next() {
			item := it.Item()
			id := keyEventID(item.Key())
			if until != 0 && id > until {
				break
			}
			var e logfacade.Event
			err := item.Value(func(val []byte) error {
				decoded, err := codec.Decode(val)
				if err != nil {
					return err
				}
				e = decoded
				return nil
			})
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

func (s *Store) ReadEvent(id uint64) (logfacade.Event, bool, error) {
	var e logfacade.Event
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(eventKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			decoded, err := codec.Decode(val)
			if err != nil {
				return err
			}
			e = decoded
			return nil
		})
	})
	return e, found, err
}

func (s *Store) WriteEvent(e logfacade.Event) error {
	raw, err := codec.Encode(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(eventKey(e.ID), raw)
	})
}

// Clear drops every event. Used by PurgeAllData.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

func (s *Store) SizeLog() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// SizeData reports the same count as SizeLog: every key in this database
// is an event record, there is no separate materialized-data keyspace.
func (s *Store) SizeData() (int, error) {
	return s.SizeLog()
}
