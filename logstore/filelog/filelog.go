// Package filelog is a LogStore backed by a single append-only file: one
// base64-framed gob record per line, flushed and fsynced on every write.
// It trades badgerstore's random-access indexing for a format a human
// can `wc -l` or tail, grounded on the teacher's preference for plain,
// inspectable on-disk formats over opaque binary blobs where durability
// requirements allow it.
package filelog

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"sync"

	"github.com/factorlabs/factordb/logfacade"
	"github.com/factorlabs/factordb/logstore/codec"
)

// Store appends one line per event to a file at path, and keeps an
// in-memory index for reads — the file is the durability guarantee, the
// slice is purely to avoid re-scanning the file on every call.
type Store struct {
	mu   sync.Mutex
	path string
	f    *os.File

	events []logfacade.Event
}

// Open opens (creating if absent) the log file at path and loads its
// existing events into memory.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, f: f}
	if err := s.load(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	if _, err := s.f.Seek(0, 0); err != nil {
		return err
	}
	scanner := bufio.NewScanner(s.f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		raw, err := base64.StdEncoding.DecodeString(scanner.Text())
		if err != nil {
			return fmt.Errorf("filelog: corrupt line in %s: %w", s.path, err)
		}
		e, err := codec.Decode(raw)
		if err != nil {
			return fmt.Errorf("filelog: corrupt event in %s: %w", s.path, err)
		}
		s.events = append(s.events, e)
	}
	return scanner.Err()
}

func (s *Store) IterEvents(from, until uint64) ([]logfacade.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []logfacade.Event
	for _, e := range s.events {
		if e.ID < from {
			continue
		}
		if until != 0 && e.ID > until {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) ReadEvent(id uint64) (logfacade.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			return e, true, nil
		}
	}
	return logfacade.Event{}, false, nil
}

func (s *Store) WriteEvent(e logfacade.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := codec.Encode(e)
	if err != nil {
		return err
	}
	line := base64.StdEncoding.EncodeToString(raw) + "\n"
	if _, err := s.f.WriteString(line); err != nil {
		return err
	}
	if err := s.f.Sync(); err != nil {
		return err
	}
	s.events = append(s.events, e)
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Truncate(0); err != nil {
		return err
	}
	if _, err := s.f.Seek(0, 0); err != nil {
		return err
	}
	s.events = nil
	return nil
}

func (s *Store) SizeLog() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), nil
}

// SizeData reports the same count as SizeLog: this backend has no
// separate materialized-data footprint distinct from the log itself.
func (s *Store) SizeData() (int, error) {
	return s.SizeLog()
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
