// Package dberr implements FactorDB's flat, discriminable error-kind
// taxonomy: a single Error struct carrying a Kind plus the offending
// idents/values, in the shape of the teacher's storage.Error/storage.ErrCode
// pair (storage/errors.go) rather than a type hierarchy.
package dberr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/factorlabs/factordb/value"
)

// Kind discriminates the error taxonomy. Clients switch on Kind (via
// errors.As + a *Error) rather than on concrete Go types.
type Kind int

const (
	// InternalErr is an unknown, internal error.
	InternalErr Kind = iota
	EntityNotFound
	AttributeNotFound
	ClassNotFound
	IndexNotFound
	Coercion
	UniqueConstraintViolation
	ReferenceConstraintViolation
	InvalidMigration
	Consistency
)

func (k Kind) String() string {
	switch k {
	case EntityNotFound:
		return "EntityNotFound"
	case AttributeNotFound:
		return "AttributeNotFound"
	case ClassNotFound:
		return "ClassNotFound"
	case IndexNotFound:
		return "IndexNotFound"
	case Coercion:
		return "CoercionError"
	case UniqueConstraintViolation:
		return "UniqueConstraintViolation"
	case ReferenceConstraintViolation:
		return "ReferenceConstraintViolation"
	case InvalidMigration:
		return "InvalidMigration"
	case Consistency:
		return "Consistency"
	default:
		return "InternalErr"
	}
}

// Error is the single error type returned by the storage engine. Every
// instance carries a human-readable Message plus whichever of the
// optional fields are relevant to its Kind.
type Error struct {
	Kind    Kind
	Message string

	Ident      string   // EntityNotFound/AttributeNotFound/ClassNotFound/IndexNotFound
	Suggestion []string // closest known idents, when available

	Expected value.ValueType // Coercion
	Actual   value.ValueType
	Path     string

	Index    string // UniqueConstraintViolation
	EntityID string
	Attribute string
	Value    value.Value

	ExpectedTypes []string // ReferenceConstraintViolation
	ActualType    string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Ident != "" {
		fmt.Fprintf(&b, "(%s)", e.Ident)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	switch e.Kind {
	case Coercion:
		fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
		if e.Path != "" {
			fmt.Fprintf(&b, " at %s", e.Path)
		}
	case UniqueConstraintViolation:
		fmt.Fprintf(&b, ": index %s, entity %s, attribute %s, value %s", e.Index, e.EntityID, e.Attribute, e.Value)
	case ReferenceConstraintViolation:
		fmt.Fprintf(&b, ": entity %s, attribute %s, expected one of %v, got %s", e.EntityID, e.Attribute, e.ExpectedTypes, e.ActualType)
	}
	if len(e.Suggestion) > 0 {
		fmt.Fprintf(&b, " (did you mean: %s?)", strings.Join(e.Suggestion, ", "))
	}
	return b.String()
}

// Is supports errors.Is(err, dberr.EntityNotFound) style checks by
// comparing Kind when both sides are *Error.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return e.Kind == o.Kind
	}
	return false
}

// KindOf extracts the Kind of err if it is (or wraps) a *Error, and false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func NotFound(kind Kind, ident string, suggestion []string) *Error {
	return &Error{Kind: kind, Ident: ident, Suggestion: suggestion}
}

func CoercionErr(expected, actual value.ValueType, path string) *Error {
	return &Error{Kind: Coercion, Expected: expected, Actual: actual, Path: path}
}

func Invalid(reason string) *Error {
	return &Error{Kind: InvalidMigration, Message: reason}
}

func Internal(message string) *Error {
	return &Error{Kind: InternalErr, Message: message}
}

func ConsistencyErr(detail string) *Error {
	return &Error{Kind: Consistency, Message: detail}
}

// UniqueViolation reports that entityID cannot take v on the named index
// because another entity already holds it.
func UniqueViolation(index, attribute, entityID string, v value.Value) *Error {
	return &Error{Kind: UniqueConstraintViolation, Index: index, Attribute: attribute, EntityID: entityID, Value: v}
}

// ReferenceViolation reports that entityID's attribute references an
// entity whose factor/type does not satisfy the RefConstrained class
// list.
func ReferenceViolation(attribute, entityID, actualType string, expected []string) *Error {
	return &Error{Kind: ReferenceConstraintViolation, Attribute: attribute, EntityID: entityID, ActualType: actualType, ExpectedTypes: expected}
}
