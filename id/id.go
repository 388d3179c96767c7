// Package id implements FactorDB's 128-bit entity identifier and the
// human-ident alternative form accepted throughout the public API.
package id

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Id is an opaque 128-bit identifier. The zero value is Nil, a reserved
// sentinel meaning "not yet assigned" — callers supply Nil to Create to
// request a randomly generated id.
type Id [16]byte

// Nil is the reserved zero identifier.
var Nil Id

// New generates a new random id, adapted from the teacher's raw-byte UUIDv4
// construction (internal/uuid.New) but built on google/uuid's RFC 4122
// generator instead of hand-rolled byte twiddling.
func New() Id {
	u := uuid.New()
	var out Id
	copy(out[:], u[:])
	return out
}

// IsNil reports whether this is the reserved nil id.
func (id Id) IsNil() bool {
	return id == Nil
}

// NonNilOrRandom returns id unchanged if it is non-nil, otherwise a freshly
// generated random id. Mirrors Id::non_nil_or_randomize in the original
// implementation.
func (id Id) NonNilOrRandom() Id {
	if id.IsNil() {
		return New()
	}
	return id
}

// String renders the canonical dashed hex form, e.g.
// "01234567-89ab-cdef-0123-456789abcdef" in UUID layout.
func (id Id) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns the raw 16-byte representation.
func (id Id) Bytes() []byte {
	out := make([]byte, 16)
	copy(out, id[:])
	return out
}

// MarshalYAML renders id in its canonical dashed hex form, rather than
// the byte-array form yaml.v3's default struct codec would otherwise
// produce for a [16]byte.
func (id Id) MarshalYAML() (any, error) {
	return id.String(), nil
}

// UnmarshalYAML parses id's canonical dashed hex form.
func (id *Id) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*id = Nil
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Compare gives a total order over ids, used by unique/multi index key
// comparisons and by Value's Id-variant ordering.
func (id Id) Compare(other Id) int {
	for i := range id {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Parse parses a dashed-hex or plain-hex 32-char string into an Id.
func Parse(s string) (Id, error) {
	if s == "" {
		return Nil, errors.New("id: empty string")
	}
	if u, err := uuid.Parse(s); err == nil {
		var out Id
		copy(out[:], u[:])
		return out, nil
	}
	raw := strings.ReplaceAll(s, "-", "")
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 16 {
		return Nil, fmt.Errorf("id: invalid id %q", s)
	}
	var out Id
	copy(out[:], b)
	return out, nil
}

// identPattern matches the restricted "ns/name" charset from §3 of the spec:
// lowercase/uppercase alphanumerics, underscore and dot within each segment.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+/[A-Za-z0-9_.]+$`)

// ValidIdent reports whether s is a syntactically valid "namespace/name"
// ident.
func ValidIdent(s string) bool {
	return identPattern.MatchString(s)
}

// Namespace returns the namespace portion of a valid ident ("factor/id" ->
// "factor"). Callers must check ValidIdent first.
func Namespace(ident string) string {
	i := strings.IndexByte(ident, '/')
	if i < 0 {
		return ""
	}
	return ident[:i]
}

// IdOrIdent is either a resolved Id or a human-readable "ns/name" ident.
// Every public API accepts either form; the registry resolves idents via
// the reserved unique index on the identity attribute.
type IdOrIdent struct {
	id    Id
	ident string
}

// FromId wraps a resolved Id.
func FromId(i Id) IdOrIdent { return IdOrIdent{id: i} }

// FromIdent wraps a human ident string.
func FromIdent(ident string) IdOrIdent { return IdOrIdent{ident: ident} }

// Id returns the wrapped Id and true if this value is in Id form.
func (v IdOrIdent) Id() (Id, bool) {
	if v.ident == "" {
		return v.id, true
	}
	return Nil, false
}

// Ident returns the wrapped ident string and true if this value is in
// ident form.
func (v IdOrIdent) Ident() (string, bool) {
	if v.ident != "" {
		return v.ident, true
	}
	return "", false
}

func (v IdOrIdent) IsNil() bool {
	return v.ident == "" && v.id.IsNil()
}

func (v IdOrIdent) String() string {
	if v.ident != "" {
		return v.ident
	}
	return v.id.String()
}

// GobEncode/GobDecode let IdOrIdent round-trip through gob despite its
// unexported fields (gob's default struct codec only sees exported
// fields) — used to persist queryexpr.Ident references in the event log.
func (v IdOrIdent) GobEncode() ([]byte, error) {
	if v.ident != "" {
		return append([]byte{0}, []byte(v.ident)...), nil
	}
	return append([]byte{1}, v.id[:]...), nil
}

func (v *IdOrIdent) GobDecode(b []byte) error {
	if len(b) == 0 {
		*v = IdOrIdent{}
		return nil
	}
	if b[0] == 0 {
		*v = IdOrIdent{ident: string(b[1:])}
		return nil
	}
	var raw Id
	copy(raw[:], b[1:])
	*v = IdOrIdent{id: raw}
	return nil
}
