// Package explain renders a planner.Plan tree into a human-readable
// description, plus — where the plan's filter is expressible as a
// flat field comparison tree — a best-effort SQL WHERE-clause rendering
// via the teacher's internal/ucast.UCASTNode.AsSQL machinery.
//
// FactorDB never executes a plan against a SQL backend (package exec
// walks it directly against an in-memory memstore.Store); the SQL
// rendering here exists purely as a diagnostic a caller can surface
// alongside the tree, in the teacher's own UCAST-to-SQL idiom.
package explain

import (
	"fmt"
	"strings"

	"github.com/factorlabs/factordb/internal/ucast"
	"github.com/factorlabs/factordb/planner"
	"github.com/factorlabs/factordb/queryexpr"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/value"
)

// Result is the output of Explain.
type Result struct {
	// Tree is an indented, human-readable description of the plan.
	Tree string

	// WhereSQL is a SQL WHERE-clause equivalent of the plan's filter
	// expression, for the dialect passed to Explain. Empty if the plan
	// carries no filter, or the filter uses a construct AsSQL can't
	// represent (e.g. a compiled Regex).
	WhereSQL string
}

// Explain describes p, resolving attribute/index local ids back to their
// idents via reg, and rendering any filter expression as dialect SQL.
func Explain(p planner.Plan, reg *registry.Registry, dialect string) Result {
	var b strings.Builder
	describe(&b, p, reg, 0)

	where := ""
	if f := filterOf(p); f != nil {
		if node, err := toUCAST(f, reg); err == nil {
			if sql, err := node.AsSQL(dialect); err == nil {
				where = sql
			}
		}
	}
	return Result{Tree: b.String(), WhereSQL: where}
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func describe(b *strings.Builder, p planner.Plan, reg *registry.Registry, depth int) {
	switch x := p.(type) {
	case planner.EmptyRelation:
		indent(b, depth)
		b.WriteString("EmptyRelation\n")
	case planner.SelectEntity:
		indent(b, depth)
		fmt.Fprintf(b, "SelectEntity(id=%s)\n", x.ID)
	case planner.Scan:
		indent(b, depth)
		fmt.Fprintf(b, "Scan(filter=%s)\n", describeExpr(x.Filter, reg))
	case planner.Filter:
		indent(b, depth)
		fmt.Fprintf(b, "Filter(%s)\n", describeExpr(x.Expr, reg))
		describe(b, x.Input, reg, depth+1)
	case planner.Limit:
		indent(b, depth)
		fmt.Fprintf(b, "Limit(%d)\n", x.N)
		describe(b, x.Input, reg, depth+1)
	case planner.Skip:
		indent(b, depth)
		fmt.Fprintf(b, "Skip(%d)\n", x.N)
		describe(b, x.Input, reg, depth+1)
	case planner.Merge:
		indent(b, depth)
		b.WriteString("Merge\n")
		describe(b, x.Left, reg, depth+1)
		describe(b, x.Right, reg, depth+1)
	case planner.IndexSelect:
		indent(b, depth)
		fmt.Fprintf(b, "IndexSelect(index=%s, value=%s)\n", indexIdent(x.Index, reg), x.Value)
	case planner.IndexScan:
		indent(b, depth)
		fmt.Fprintf(b, "IndexScan(index=%s, from=%s, until=%s, dir=%s)\n",
			indexIdent(x.Index, reg), boundString(x.From), boundString(x.Until), dirString(x.Dir))
	case planner.IndexScanPrefix:
		indent(b, depth)
		fmt.Fprintf(b, "IndexScanPrefix(index=%s, prefix=%q, dir=%s)\n",
			indexIdent(x.Index, reg), x.Prefix, dirString(x.Dir))
	case planner.Sort:
		indent(b, depth)
		fmt.Fprintf(b, "Sort(%s)\n", describeSorts(x.Sorts, reg))
		describe(b, x.Input, reg, depth+1)
	case planner.Aggregate:
		indent(b, depth)
		fmt.Fprintf(b, "Aggregate(%d aggs)\n", len(x.Aggs))
		describe(b, x.Input, reg, depth+1)
	default:
		indent(b, depth)
		fmt.Fprintf(b, "<unknown plan node %T>\n", p)
	}
}

func dirString(d planner.Direction) string {
	if d == planner.Desc {
		return "desc"
	}
	return "asc"
}

func boundString(v *value.Value) string {
	if v == nil {
		return "-"
	}
	return (*v).String()
}

func indexIdent(local uint32, reg *registry.Registry) string {
	if idx := reg.IndexByLocal(local); idx != nil {
		return idx.Ident
	}
	return fmt.Sprintf("#%d", local)
}

func attrIdent(local uint32, reg *registry.Registry) string {
	if attr := reg.AttrByLocal(local); attr != nil {
		return attr.Ident
	}
	return fmt.Sprintf("#%d", local)
}

func describeSorts(sorts []planner.ResolvedSortKey, reg *registry.Registry) string {
	parts := make([]string, len(sorts))
	for i, s := range sorts {
		dir := "asc"
		if s.Desc {
			dir = "desc"
		}
		parts[i] = fmt.Sprintf("%s %s", attrIdent(s.Local, reg), dir)
	}
	return strings.Join(parts, ", ")
}

// filterOf finds the first filter-carrying node reachable from p without
// descending past a node that already consumes or replaces it (an
// IndexSelect/IndexScan/IndexScanPrefix has no residual queryexpr filter
// to show — the optimizer folded it away entirely).
func filterOf(p planner.Plan) queryexpr.Expr {
	switch x := p.(type) {
	case planner.Scan:
		return x.Filter
	case planner.Filter:
		return x.Expr
	case planner.Limit:
		return filterOf(x.Input)
	case planner.Skip:
		return filterOf(x.Input)
	case planner.Sort:
		return filterOf(x.Input)
	case planner.Aggregate:
		return filterOf(x.Input)
	default:
		return nil
	}
}

func describeExpr(e queryexpr.Expr, reg *registry.Registry) string {
	if e == nil {
		return "<none>"
	}
	switch x := e.(type) {
	case queryexpr.Literal:
		return x.Value.String()
	case queryexpr.List:
		parts := make([]string, len(x.Items))
		for i, it := range x.Items {
			parts[i] = describeExpr(it, reg)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case queryexpr.Attr:
		return attrIdent(x.Local, reg)
	case queryexpr.Ident:
		return x.Ref.String()
	case queryexpr.UnaryNot:
		return "not (" + describeExpr(x.X, reg) + ")"
	case queryexpr.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", describeExpr(x.Left, reg), binOpString(x.Op), describeExpr(x.Right, reg))
	case queryexpr.If:
		return fmt.Sprintf("if %s then %s else %s", describeExpr(x.Cond, reg), describeExpr(x.Then, reg), describeExpr(x.Else, reg))
	case queryexpr.InLiteral:
		parts := make([]string, len(x.Items))
		for i, it := range x.Items {
			parts[i] = it.String()
		}
		return fmt.Sprintf("%s in [%s]", describeExpr(x.Value, reg), strings.Join(parts, ", "))
	case queryexpr.Regex:
		return fmt.Sprintf("%s =~ /%s/", describeExpr(x.Subject, reg), x.Original)
	case queryexpr.InheritsClass:
		return fmt.Sprintf("inherits(%s)", x.Class)
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}

func binOpString(op queryexpr.BinOp) string {
	switch op {
	case queryexpr.Eq:
		return "=="
	case queryexpr.Neq:
		return "!="
	case queryexpr.Gt:
		return ">"
	case queryexpr.Gte:
		return ">="
	case queryexpr.Lt:
		return "<"
	case queryexpr.Lte:
		return "<="
	case queryexpr.And:
		return "and"
	case queryexpr.Or:
		return "or"
	case queryexpr.In:
		return "in"
	case queryexpr.Contains:
		return "contains"
	case queryexpr.RegexMatch:
		return "=~"
	case queryexpr.RegexMatchCaseInsensitive:
		return "=~*"
	default:
		return "?"
	}
}

var fieldOps = map[queryexpr.BinOp]string{
	queryexpr.Eq:       "eq",
	queryexpr.Neq:      "ne",
	queryexpr.Gt:       "gt",
	queryexpr.Gte:      "ge",
	queryexpr.Lt:       "lt",
	queryexpr.Lte:      "le",
	queryexpr.Contains: "contains",
}

var invertedOp = map[queryexpr.BinOp]queryexpr.BinOp{
	queryexpr.Gt:  queryexpr.Lt,
	queryexpr.Gte: queryexpr.Lte,
	queryexpr.Lt:  queryexpr.Gt,
	queryexpr.Lte: queryexpr.Gte,
}

// toUCAST lowers a resolved queryexpr.Expr (Attr-local-id form) into a
// ucast.UCASTNode tree, the same shape the teacher's AsSQL walks. Regex
// and Literal/If/List-at-top-level have no UCAST representation and
// return an error; And/Or/Not compound to UCASTNode compound nodes.
func toUCAST(e queryexpr.Expr, reg *registry.Registry) (ucast.UCASTNode, error) {
	switch x := e.(type) {
	case queryexpr.UnaryNot:
		inner, err := toUCAST(x.X, reg)
		if err != nil {
			return ucast.UCASTNode{}, err
		}
		return ucast.UCASTNode{Type: "compound", Op: "not", Value: []ucast.UCASTNode{inner}}, nil
	case queryexpr.BinaryOp:
		if x.Op == queryexpr.And || x.Op == queryexpr.Or {
			left, err := toUCAST(x.Left, reg)
			if err != nil {
				return ucast.UCASTNode{}, err
			}
			right, err := toUCAST(x.Right, reg)
			if err != nil {
				return ucast.UCASTNode{}, err
			}
			op := "and"
			if x.Op == queryexpr.Or {
				op = "or"
			}
			return ucast.UCASTNode{Type: "compound", Op: op, Value: []ucast.UCASTNode{left, right}}, nil
		}
		return fieldCompare(x, reg)
	case queryexpr.InLiteral:
		attr, ok := x.Value.(queryexpr.Attr)
		if !ok {
			return ucast.UCASTNode{}, fmt.Errorf("explain: InLiteral subject %T not representable", x.Value)
		}
		items := make([]any, len(x.Items))
		for i, it := range x.Items {
			v, err := toAny(it)
			if err != nil {
				return ucast.UCASTNode{}, err
			}
			items[i] = v
		}
		return ucast.UCASTNode{Type: "field", Op: "in", Field: attrIdent(attr.Local, reg), Value: items}, nil
	default:
		return ucast.UCASTNode{}, fmt.Errorf("explain: %T has no UCAST representation", e)
	}
}

func fieldCompare(x queryexpr.BinaryOp, reg *registry.Registry) (ucast.UCASTNode, error) {
	op := x.Op
	left, right := x.Left, x.Right

	attr, isAttrLeft := left.(queryexpr.Attr)
	if !isAttrLeft {
		attr, isAttrLeft = right.(queryexpr.Attr)
		if !isAttrLeft {
			return ucast.UCASTNode{}, fmt.Errorf("explain: comparison has no Attr operand")
		}
		left, right = right, left
		if inv, ok := invertedOp[op]; ok {
			op = inv
		}
	}

	lit, ok := right.(queryexpr.Literal)
	if !ok {
		return ucast.UCASTNode{}, fmt.Errorf("explain: comparison's other side is %T, not a literal", right)
	}

	opName, ok := fieldOps[op]
	if !ok {
		return ucast.UCASTNode{}, fmt.Errorf("explain: operator %s has no field-comparison form", binOpString(op))
	}

	val, err := toAny(lit.Value)
	if err != nil {
		return ucast.UCASTNode{}, err
	}
	return ucast.UCASTNode{Type: "field", Op: opName, Field: attrIdent(attr.Local, reg), Value: val}, nil
}

// toAny converts a value.Value to the plain Go value go-sqlbuilder
// interpolates into the rendered SQL.
func toAny(v value.Value) (any, error) {
	switch x := v.(type) {
	case value.Unit:
		return ucast.Null{}, nil
	case value.Bool:
		return bool(x), nil
	case value.Int:
		return int64(x), nil
	case value.UInt:
		return uint64(x), nil
	case value.Float:
		return float64(x), nil
	case value.String:
		return string(x), nil
	case value.Bytes:
		return []byte(x), nil
	case value.IdVal:
		return x.String(), nil
	case value.List:
		items := make([]any, len(x))
		for i, it := range x {
			a, err := toAny(it)
			if err != nil {
				return nil, err
			}
			items[i] = a
		}
		return items, nil
	default:
		return nil, fmt.Errorf("explain: value %T not representable in SQL", v)
	}
}
