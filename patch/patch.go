// Package patch implements FactorDB's JSON-Patch–style edit language over
// attribute maps: an ordered sequence of Add/Replace/Remove operations
// addressed by path, applied atomically to a DataMap.
package patch

import (
	"fmt"

	"github.com/factorlabs/factordb/path"
	"github.com/factorlabs/factordb/value"
)

// DataMap is a flat attribute-ident to Value map, the public (pre-tuple)
// shape of an entity's data.
type DataMap map[string]value.Value

// Clone returns a shallow copy of m.
func (m DataMap) Clone() DataMap {
	out := make(DataMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// OpErrorKind discriminates the ways applying a PatchOp can fail.
type OpErrorKind int

const (
	ErrEmptyPath OpErrorKind = iota
	ErrListIndexForMap
	ErrUnsupportedValue
	ErrExistingValueMismatch
)

// OpError reports a failed PatchOp.Apply, naming the offending path and
// the reason.
type OpError struct {
	Path     path.Path
	Kind     OpErrorKind
	Message  string
	Expected value.Value
	Actual   value.Value
}

func (e *OpError) Error() string {
	var msg string
	switch e.Kind {
	case ErrEmptyPath:
		msg = "empty path"
	case ErrListIndexForMap:
		msg = "list index used for map"
	case ErrUnsupportedValue:
		msg = "unsupported value: " + e.Message
	case ErrExistingValueMismatch:
		msg = fmt.Sprintf("existing value mismatch: expected %s, actual %s", e.Expected, e.Actual)
	default:
		msg = "patch error"
	}
	if len(e.Path) > 0 {
		msg += fmt.Sprintf(" at %s", e.Path)
	}
	return msg
}

// Op is one step of a Patch: Add, Replace or Remove at a Path.
type Op interface {
	apply(target DataMap) error
}

// Add inserts Value at Path if absent; if the existing value is a list it
// appends (deduplicated); if the existing value is a scalar it promotes
// the slot to a two-element list. Adding into a map is not yet supported.
type Add struct {
	Path  path.Path
	Value value.Value
}

// Replace sets Value at Path. If Current is non-nil, the replace only
// takes effect when the live value equals Current (an insert-if-absent
// when the live value is Unit and Must is false); if Must is true and the
// live value doesn't match Current, the replace errors instead of being
// silently skipped.
type Replace struct {
	Path    path.Path
	Value   value.Value
	Current value.Value
	Must    bool
}

// Remove deletes the key at Path. If Value is non-nil, removal from a
// list filters only matching elements, and removal of a scalar asserts
// the live value equals Value before deleting it.
type Remove struct {
	Path  path.Path
	Value value.Value
}

func firstKey(p path.Path) (string, path.Path, error) {
	if len(p) == 0 {
		return "", nil, &OpError{Path: p, Kind: ErrEmptyPath}
	}
	if _, ok := p[0].Index(); ok {
		return "", nil, &OpError{Path: p, Kind: ErrListIndexForMap}
	}
	key, _ := p[0].Key()
	return key, p[1:], nil
}

func (op Add) apply(target DataMap) error {
	key, rest, err := firstKey(op.Path)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return &OpError{Path: op.Path, Kind: ErrUnsupportedValue, Message: "nested patch not implemented"}
	}
	current, ok := target[key]
	if !ok {
		target[key] = op.Value
		return nil
	}
	if _, isUnit := current.(value.Unit); isUnit {
		target[key] = op.Value
		return nil
	}
	if list, isList := current.(value.List); isList {
		for _, item := range list {
			if item.Equal(op.Value) {
				return nil
			}
		}
		target[key] = append(list, op.Value)
		return nil
	}
	if _, isMap := current.(value.Map); isMap {
		return &OpError{Path: op.Path, Kind: ErrUnsupportedValue, Message: "can't add to a map"}
	}
	target[key] = value.List{current, op.Value}
	return nil
}

func (op Remove) apply(target DataMap) error {
	key, rest, err := firstKey(op.Path)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return &OpError{Path: op.Path, Kind: ErrUnsupportedValue, Message: "nested patch not implemented"}
	}
	if op.Value == nil {
		delete(target, key)
		return nil
	}
	current, ok := target[key]
	if !ok {
		return nil
	}
	if list, isList := current.(value.List); isList {
		out := make(value.List, 0, len(list))
		for _, item := range list {
			if !item.Equal(op.Value) {
				out = append(out, item)
			}
		}
		target[key] = out
		return nil
	}
	if current.Equal(op.Value) {
		delete(target, key)
		return nil
	}
	return &OpError{Path: op.Path, Kind: ErrExistingValueMismatch, Expected: op.Value, Actual: current}
}

func (op Replace) apply(target DataMap) error {
	key, rest, err := firstKey(op.Path)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return &OpError{Path: op.Path, Kind: ErrUnsupportedValue, Message: "nested patch not implemented"}
	}
	if op.Current == nil {
		target[key] = op.Value
		return nil
	}
	current, ok := target[key]
	if !ok {
		target[key] = op.Value
		return nil
	}
	if current.Equal(op.Current) {
		target[key] = op.Value
		return nil
	}
	if !op.Must {
		return nil
	}
	return &OpError{Path: op.Path, Kind: ErrExistingValueMismatch, Expected: op.Current, Actual: current}
}

// Patch is an ordered sequence of Ops applied atomically by ApplyMap: the
// first failing op aborts the whole patch. ApplyMap works on a clone, so
// target itself is never modified, whether the patch succeeds or fails.
type Patch []Op

// ApplyMap applies every op in sequence to a clone of target, returning
// the resulting map or the first error encountered.
func (p Patch) ApplyMap(target DataMap) (DataMap, error) {
	out := target.Clone()
	for _, op := range p {
		if err := op.apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
