// Package queryexpr implements the filter-expression AST the planner
// resolves into local-id form and the executor evaluates against tuple
// data: Literal/List/Attr/Ident/UnaryNot/BinaryOp/If/InLiteral/Regex/
// InheritsClass, grounded on the original engine's plan::Expr together
// with the teacher's internal/ucast filter-tree shape.
package queryexpr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/value"
)

// BinOp enumerates the binary comparison/logical operators.
type BinOp int

const (
	Eq BinOp = iota
	Neq
	Gt
	Gte
	Lt
	Lte
	And
	Or
	In
	Contains
	RegexMatch
	RegexMatchCaseInsensitive
)

// Expr is the filter expression tree. Concrete nodes are Literal, List,
// Attr, Ident, UnaryNot, BinaryOp, If, InLiteral, Regex and InheritsClass.
type Expr interface{ expr() }

// Literal wraps a constant Value.
type Literal struct{ Value value.Value }

// List is a literal list of expressions (as opposed to value.List, a
// literal list value — List evaluates each element then builds a
// value.List, allowing non-constant elements).
type List struct{ Items []Expr }

// Attr references an attribute by its resolved registry local id — the
// form a filter is in after planning.
type Attr struct{ Local uint32 }

// Ident references an attribute by ident or id, before resolution.
type Ident struct{ Ref id.IdOrIdent }

// UnaryNot is the sole unary operator.
type UnaryNot struct{ X Expr }

// BinaryOp applies Op to Left and Right.
type BinaryOp struct {
	Left  Expr
	Op    BinOp
	Right Expr
}

// If evaluates Then if Cond is truthy, else Else.
type If struct{ Cond, Then, Else Expr }

// InLiteral tests whether Value's evaluation is a member of Items.
type InLiteral struct {
	Value Expr
	Items []value.Value
}

// Regex is a BinaryOp{_, RegexMatch(CaseInsensitive), literal} node
// preprocessed by the planner's regex-compile pass so the executor never
// compiles a pattern per tuple.
type Regex struct {
	Subject    Expr
	Compiled   *regexp.Regexp
	Original   string
	IgnoreCase bool
}

// InheritsClass lowers to InLiteral{Attr(factor/type), {X} ∪ subclasses(X)}
// once the planner resolves it against the registry's class graph.
type InheritsClass struct{ Class string }

func (Literal) expr()       {}
func (List) expr()          {}
func (Attr) expr()          {}
func (Ident) expr()         {}
func (UnaryNot) expr()      {}
func (BinaryOp) expr()      {}
func (If) expr()            {}
func (InLiteral) expr()     {}
func (Regex) expr()         {}
func (InheritsClass) expr() {}

// Resolve lowers every Ident to Attr and every InheritsClass to InLiteral
// against reg, producing a resolved Expr ready for planning and execution.
// It is applied once, at the top of Select planning.
func Resolve(e Expr, reg *registry.Registry) (Expr, error) {
	switch x := e.(type) {
	case Literal, Attr:
		return x, nil
	case Ident:
		attr, err := reg.ResolveAttrByIdOrIdent(x.Ref)
		if err != nil {
			return nil, err
		}
		return Attr{Local: attr.LocalID}, nil
	case List:
		items := make([]Expr, len(x.Items))
		for i, it := range x.Items {
			r, err := Resolve(it, reg)
			if err != nil {
				return nil, err
			}
			items[i] = r
		}
		return List{Items: items}, nil
	case UnaryNot:
		r, err := Resolve(x.X, reg)
		if err != nil {
			return nil, err
		}
		return UnaryNot{X: r}, nil
	case BinaryOp:
		l, err := Resolve(x.Left, reg)
		if err != nil {
			return nil, err
		}
		r, err := Resolve(x.Right, reg)
		if err != nil {
			return nil, err
		}
		return BinaryOp{Left: l, Op: x.Op, Right: r}, nil
	case If:
		c, err := Resolve(x.Cond, reg)
		if err != nil {
			return nil, err
		}
		t, err := Resolve(x.Then, reg)
		if err != nil {
			return nil, err
		}
		el, err := Resolve(x.Else, reg)
		if err != nil {
			return nil, err
		}
		return If{Cond: c, Then: t, Else: el}, nil
	case InLiteral:
		v, err := Resolve(x.Value, reg)
		if err != nil {
			return nil, err
		}
		return InLiteral{Value: v, Items: x.Items}, nil
	case Regex:
		subj, err := Resolve(x.Subject, reg)
		if err != nil {
			return nil, err
		}
		x.Subject = subj
		return x, nil
	case InheritsClass:
		attr, err := reg.AttrByIdent("factor/type")
		if err != nil {
			return nil, err
		}
		classes := append([]string{x.Class}, reg.Subclasses(x.Class)...)
		items := make([]value.Value, len(classes))
		for i, c := range classes {
			items[i] = value.String(c)
		}
		return InLiteral{Value: Attr{Local: attr.LocalID}, Items: items}, nil
	default:
		return nil, fmt.Errorf("queryexpr: unresolved expression %T", e)
	}
}

// Eval evaluates e against a tuple's attribute data, keyed by local id.
// A non-boolean result at the top level is treated as false by the
// executor's Scan node, per spec §4.6.
func Eval(e Expr, byLocal map[uint32]value.Value) (value.Value, error) {
	switch x := e.(type) {
	case Literal:
		return x.Value, nil
	case Attr:
		v, ok := byLocal[x.Local]
		if !ok {
			return value.Unit{}, nil
		}
		return v, nil
	case List:
		items := make(value.List, len(x.Items))
		for i, it := range x.Items {
			v, err := Eval(it, byLocal)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case UnaryNot:
		v, err := Eval(x.X, byLocal)
		if err != nil {
			return nil, err
		}
		return value.Bool(!truthy(v)), nil
	case If:
		c, err := Eval(x.Cond, byLocal)
		if err != nil {
			return nil, err
		}
		if truthy(c) {
			return Eval(x.Then, byLocal)
		}
		return Eval(x.Else, byLocal)
	case InLiteral:
		v, err := Eval(x.Value, byLocal)
		if err != nil {
			return nil, err
		}
		for _, item := range x.Items {
			if v.Equal(item) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case Regex:
		v, err := Eval(x.Subject, byLocal)
		if err != nil {
			return nil, err
		}
		s, ok := v.(value.String)
		if !ok {
			return value.Bool(false), nil
		}
		return value.Bool(x.Compiled.MatchString(string(s))), nil
	case BinaryOp:
		return evalBinary(x, byLocal)
	case InheritsClass:
		return nil, fmt.Errorf("queryexpr: InheritsClass must be resolved before evaluation")
	case Ident:
		return nil, fmt.Errorf("queryexpr: Ident must be resolved before evaluation")
	default:
		return nil, fmt.Errorf("queryexpr: unhandled expression %T", e)
	}
}

func truthy(v value.Value) bool {
	b, ok := v.(value.Bool)
	return ok && bool(b)
}

func evalBinary(x BinaryOp, byLocal map[uint32]value.Value) (value.Value, error) {
	if x.Op == And {
		l, err := Eval(x.Left, byLocal)
		if err != nil {
			return nil, err
		}
		if !truthy(l) {
			return value.Bool(false), nil
		}
		r, err := Eval(x.Right, byLocal)
		if err != nil {
			return nil, err
		}
		return value.Bool(truthy(r)), nil
	}
	if x.Op == Or {
		l, err := Eval(x.Left, byLocal)
		if err != nil {
			return nil, err
		}
		if truthy(l) {
			return value.Bool(true), nil
		}
		r, err := Eval(x.Right, byLocal)
		if err != nil {
			return nil, err
		}
		return value.Bool(truthy(r)), nil
	}

	l, err := Eval(x.Left, byLocal)
	if err != nil {
		return nil, err
	}
	r, err := Eval(x.Right, byLocal)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case Eq:
		return value.Bool(l.Equal(r)), nil
	case Neq:
		return value.Bool(!l.Equal(r)), nil
	case Gt:
		return value.Bool(l.Compare(r) > 0), nil
	case Gte:
		return value.Bool(l.Compare(r) >= 0), nil
	case Lt:
		return value.Bool(l.Compare(r) < 0), nil
	case Lte:
		return value.Bool(l.Compare(r) <= 0), nil
	case In:
		items, ok := r.(value.List)
		if !ok {
			return value.Bool(false), nil
		}
		for _, item := range items {
			if l.Equal(item) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case Contains:
		switch rv := l.(type) {
		case value.String:
			s, ok := r.(value.String)
			return value.Bool(ok && strings.Contains(string(rv), string(s))), nil
		case value.List:
			for _, item := range rv {
				if item.Equal(r) {
					return value.Bool(true), nil
				}
			}
			return value.Bool(false), nil
		default:
			return value.Bool(false), nil
		}
	case RegexMatch, RegexMatchCaseInsensitive:
		s, ok := l.(value.String)
		pat, okp := r.(value.String)
		if !ok || !okp {
			return value.Bool(false), nil
		}
		expr := string(pat)
		if x.Op == RegexMatchCaseInsensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return value.Bool(false), nil
		}
		return value.Bool(re.MatchString(string(s))), nil
	default:
		return nil, fmt.Errorf("queryexpr: unknown binary operator %d", x.Op)
	}
}
