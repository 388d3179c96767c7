// Package path implements the nested path addressing shared by coercion
// errors and patch operations: a sequence of map-key or list-index steps
// locating a nested element inside a Value.
package path

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// Elem is one step of a Path: either a map key or a list index.
type Elem struct {
	key     string
	index   int
	isIndex bool
}

// Key builds a map-key path element.
func Key(k string) Elem { return Elem{key: k} }

// Index builds a list-index path element.
func Index(i int) Elem { return Elem{index: i, isIndex: true} }

// IsIndex reports whether this element addresses a list index rather than
// a map key.
func (e Elem) IsIndex() bool { return e.isIndex }

// Key returns the map key and true, if this element is a key step.
func (e Elem) Key() (string, bool) {
	if e.isIndex {
		return "", false
	}
	return e.key, true
}

// Index returns the list index and true, if this element is an index step.
func (e Elem) Index() (int, bool) {
	if !e.isIndex {
		return 0, false
	}
	return e.index, true
}

func (e Elem) String() string {
	if e.isIndex {
		return "[" + strconv.Itoa(e.index) + "]"
	}
	return e.key
}

// GobEncode/GobDecode let Elem round-trip through gob despite its
// unexported fields — used to persist patch.Op paths in the event log.
func (e Elem) GobEncode() ([]byte, error) {
	if e.isIndex {
		b := make([]byte, 9)
		b[0] = 1
		binary.BigEndian.PutUint64(b[1:], uint64(e.index))
		return b, nil
	}
	return append([]byte{0}, []byte(e.key)...), nil
}

func (e *Elem) GobDecode(b []byte) error {
	if len(b) == 0 {
		*e = Elem{}
		return nil
	}
	if b[0] == 1 {
		*e = Elem{index: int(binary.BigEndian.Uint64(b[1:])), isIndex: true}
		return nil
	}
	*e = Elem{key: string(b[1:])}
	return nil
}

// Path is an ordered sequence of Elem steps from the root of a value.
type Path []Elem

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		parts[i] = e.String()
	}
	return strings.Join(parts, "/")
}
