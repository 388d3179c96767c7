package planner

import (
	"reflect"
	"regexp"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/queryexpr"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

func samePlan(a, b Plan) bool { return reflect.DeepEqual(a, b) }

// mapChildren rewrites p's immediate sub-plan(s) with f, leaving leaf
// plans (Scan, SelectEntity, EmptyRelation, IndexSelect, IndexScan,
// IndexScanPrefix) untouched — callers apply their own per-node rewrite
// before or after recursing into children via this helper.
func mapChildren(p Plan, f func(Plan) Plan) Plan {
	switch x := p.(type) {
	case Filter:
		x.Input = f(x.Input)
		return x
	case Limit:
		x.Input = f(x.Input)
		return x
	case Skip:
		x.Input = f(x.Input)
		return x
	case Sort:
		x.Input = f(x.Input)
		return x
	case Aggregate:
		x.Input = f(x.Input)
		return x
	case Merge:
		x.Left = f(x.Left)
		x.Right = f(x.Right)
		return x
	default:
		return p
	}
}

// --- pass 1: EntitySelect fold ---

func foldEntitySelect(p Plan, reg *registry.Registry) Plan {
	p = mapChildren(p, func(c Plan) Plan { return foldEntitySelect(c, reg) })
	scan, ok := p.(Scan)
	if !ok || scan.Filter == nil {
		return p
	}
	idAttr, err := reg.AttrByIdent(schema.AttrID)
	if err != nil {
		return p
	}
	if eid, ok := matchIDEquality(scan.Filter, idAttr.LocalID); ok {
		return SelectEntity{ID: eid}
	}
	return p
}

func matchIDEquality(e queryexpr.Expr, idAttrLocal uint32) (eid id.Id, ok bool) {
	bop, isBin := e.(queryexpr.BinaryOp)
	if !isBin || bop.Op != queryexpr.Eq {
		return eid, false
	}
	attr, lit, matched := splitAttrLiteral(bop.Left, bop.Right)
	if !matched || attr != idAttrLocal {
		return eid, false
	}
	idv, isID := lit.(value.IdVal)
	if !isID {
		return eid, false
	}
	return id.Id(idv), true
}

// splitAttrLiteral normalizes a binary operand pair into (attrLocal,
// literalValue), accepting either operand order.
func splitAttrLiteral(l, r queryexpr.Expr) (attrLocal uint32, lit value.Value, ok bool) {
	if a, isAttr := l.(queryexpr.Attr); isAttr {
		if litE, isLit := r.(queryexpr.Literal); isLit {
			return a.Local, litE.Value, true
		}
	}
	if a, isAttr := r.(queryexpr.Attr); isAttr {
		if litE, isLit := l.(queryexpr.Literal); isLit {
			return a.Local, litE.Value, true
		}
	}
	return 0, nil, false
}

// --- pass 2: IndexedAttribute fold ---

func foldIndexedAttribute(p Plan, reg *registry.Registry) Plan {
	p = mapChildren(p, func(c Plan) Plan { return foldIndexedAttribute(c, reg) })
	scan, ok := p.(Scan)
	if !ok || scan.Filter == nil {
		return p
	}

	conjuncts := flattenAnd(scan.Filter)
	for i, c := range conjuncts {
		if indexNode, ok := tryIndexedConjunct(c, reg); ok {
			residue := append(append([]queryexpr.Expr{}, conjuncts[:i]...), conjuncts[i+1:]...)
			if len(residue) == 0 {
				return indexNode
			}
			return Filter{Expr: andAll(residue), Input: indexNode}
		}
	}
	return p
}

func flattenAnd(e queryexpr.Expr) []queryexpr.Expr {
	bop, ok := e.(queryexpr.BinaryOp)
	if !ok || bop.Op != queryexpr.And {
		return []queryexpr.Expr{e}
	}
	return append(flattenAnd(bop.Left), flattenAnd(bop.Right)...)
}

func andAll(exprs []queryexpr.Expr) queryexpr.Expr {
	out := exprs[0]
	for _, e := range exprs[1:] {
		out = queryexpr.BinaryOp{Left: out, Op: queryexpr.And, Right: e}
	}
	return out
}

func tryIndexedConjunct(e queryexpr.Expr, reg *registry.Registry) (Plan, bool) {
	if bop, ok := e.(queryexpr.BinaryOp); ok && bop.Op == queryexpr.Eq {
		attrLocal, lit, matched := splitAttrLiteral(bop.Left, bop.Right)
		if !matched {
			return nil, false
		}
		idxLocal, ok := reg.IndexForAttribute(attrLocal)
		if !ok {
			return nil, false
		}
		return IndexSelect{Index: idxLocal, Value: lit}, true
	}
	if in, ok := e.(queryexpr.InLiteral); ok {
		attr, isAttr := in.Value.(queryexpr.Attr)
		if !isAttr || len(in.Items) == 0 {
			return nil, false
		}
		idxLocal, ok := reg.IndexForAttribute(attr.Local)
		if !ok {
			return nil, false
		}
		var merged Plan = IndexSelect{Index: idxLocal, Value: in.Items[0]}
		for _, v := range in.Items[1:] {
			merged = Merge{Left: merged, Right: IndexSelect{Index: idxLocal, Value: v}}
		}
		return merged, true
	}
	return nil, false
}

// --- pass 3: regex compile ---

func compileRegex(p Plan) Plan {
	p = mapChildren(p, compileRegex)
	switch x := p.(type) {
	case Scan:
		if x.Filter != nil {
			x.Filter = compileRegexExpr(x.Filter)
		}
		return x
	case Filter:
		x.Expr = compileRegexExpr(x.Expr)
		return x
	}
	return p
}

func compileRegexExpr(e queryexpr.Expr) queryexpr.Expr {
	switch x := e.(type) {
	case queryexpr.BinaryOp:
		if x.Op == queryexpr.RegexMatch || x.Op == queryexpr.RegexMatchCaseInsensitive {
			if lit, ok := x.Right.(queryexpr.Literal); ok {
				if s, ok := lit.Value.(value.String); ok {
					pattern := string(s)
					ignoreCase := x.Op == queryexpr.RegexMatchCaseInsensitive
					if ignoreCase {
						pattern = "(?i)" + pattern
					}
					if re, err := regexp.Compile(pattern); err == nil {
						return queryexpr.Regex{
							Subject:    compileRegexExpr(x.Left),
							Compiled:   re,
							Original:   string(s),
							IgnoreCase: ignoreCase,
						}
					}
				}
			}
		}
		return queryexpr.BinaryOp{Left: compileRegexExpr(x.Left), Op: x.Op, Right: compileRegexExpr(x.Right)}
	case queryexpr.UnaryNot:
		return queryexpr.UnaryNot{X: compileRegexExpr(x.X)}
	case queryexpr.If:
		return queryexpr.If{Cond: compileRegexExpr(x.Cond), Then: compileRegexExpr(x.Then), Else: compileRegexExpr(x.Else)}
	default:
		return e
	}
}
