// Package codec serializes logfacade.Event values for the durable
// LogStore backends. Events hold a tree of interface-typed nodes (filter
// expressions, batch actions, schema actions, values) rather than flat
// records, so gob — not the teacher's encoding/json, which the teacher
// only ever points at flat metadata structs — is the natural fit: it
// already knows how to round-trip a registered interface through
// encoding/gob.Register, whereas a JSON codec would need a hand-written
// discriminator for every variant in this package's sum types. id.IdOrIdent
// and path.Elem carry GobEncode/GobDecode methods for the same reason
// (their fields are unexported, so gob's struct reflection can't see
// them).
package codec

import (
	"bytes"
	"encoding/gob"

	"github.com/factorlabs/factordb/db"
	"github.com/factorlabs/factordb/logfacade"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/queryexpr"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/value"
)

func init() {
	gob.Register(value.Unit{})
	gob.Register(value.Bool(false))
	gob.Register(value.Int(0))
	gob.Register(value.UInt(0))
	gob.Register(value.Float(0))
	gob.Register(value.String(""))
	gob.Register(value.Bytes(nil))
	gob.Register(value.List(nil))
	gob.Register(value.Map(nil))
	gob.Register(value.IdVal{})

	gob.Register(queryexpr.Literal{})
	gob.Register(queryexpr.List{})
	gob.Register(queryexpr.Attr{})
	gob.Register(queryexpr.Ident{})
	gob.Register(queryexpr.UnaryNot{})
	gob.Register(queryexpr.BinaryOp{})
	gob.Register(queryexpr.If{})
	gob.Register(queryexpr.InLiteral{})
	gob.Register(queryexpr.InheritsClass{})

	gob.Register(patch.Add{})
	gob.Register(patch.Replace{})
	gob.Register(patch.Remove{})

	gob.Register(db.Create{})
	gob.Register(db.Replace{})
	gob.Register(db.Merge{})
	gob.Register(db.PatchAction{})
	gob.Register(db.Delete{})
	gob.Register(db.SelectAction{})
	gob.Register(db.SelectDelete{})
	gob.Register(db.SelectPatch{})

	gob.Register(registry.CreateAttribute{})
	gob.Register(registry.CreateClass{})
	gob.Register(registry.CreateIndex{})
	gob.Register(registry.DeleteAttribute{})
	gob.Register(registry.DeleteClass{})
	gob.Register(registry.DeleteIndex{})
	gob.Register(registry.AttributeChangeType{})

	gob.Register(logfacade.BatchOp{})
	gob.Register(logfacade.MigrateOp{})
}

// Encode gob-serializes a single Event.
func Encode(e logfacade.Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes a single Event previously produced by Encode.
func Decode(b []byte) (logfacade.Event, error) {
	var e logfacade.Event
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return logfacade.Event{}, err
	}
	return e, nil
}
