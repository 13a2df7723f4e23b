package elaborator

import (
	"math"

	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
	"github.com/alloy-rel/core/internal/typedast"
	"github.com/alloy-rel/core/internal/typeops"
)

// typecheck is the bottom-up pass: it builds a typed expression for x,
// producing a *typedast.ExprChoice wherever x's name could denote more than
// one thing (spec.md §4.G). Sub-expressions that themselves carry a choice
// are disambiguated as soon as the enclosing operator gives enough context
// to do so (see resolveNow), rather than deferred to one final pass.
func (e *elaborator) typecheck(x ast.Expr, sc *scope) typedast.Expr {
	switch n := x.(type) {
	case *ast.NameExpr:
		return e.name(n, sc)
	case *ast.IntExpr:
		return e.intLit(n)
	case *ast.UnaryExpr:
		return e.unary(n, sc)
	case *ast.BinaryExpr:
		return e.binary(n, sc)
	case *ast.DotExpr:
		return e.dot(n, sc)
	case *ast.QuantExpr:
		return e.quant(n, sc)
	case *ast.LetExpr:
		return e.let(n, sc)
	case *ast.CallExpr:
		return e.call(n, sc)
	case *ast.ITEExpr:
		return e.ite(n, sc)
	default:
		return e.fail(x.Pos(), errs.Fatal, "unrecognized expression node %T", x)
	}
}

// name gathers every binding x.Name could denote (spec.md §4.G, "Name
// reference"): an in-scope bound variable, a declared signature, a field
// declared by any sig (a bare field name denotes its full owner->type
// relation, same as a toplevel sig reference — Alloy has no "receiver"
// syntax requirement for a field by itself), or a function/predicate
// (fully applied if it takes no parameters, otherwise a partial ExprBadCall
// waiting for dot-chained arguments).
func (e *elaborator) name(x *ast.NameExpr, sc *scope) typedast.Expr {
	var cands []typedast.Expr
	if v, ok := sc.lookup(x.Name); ok {
		cands = append(cands, typedast.NewVarRef(x.Pos(), v))
	}
	if v, ok := e.graph.Lookup(x.Name); ok {
		switch sig := v.(type) {
		case *reltype.PrimSig:
			cands = append(cands, typedast.NewSigRef(x.Pos(), sig))
		case *reltype.SubsetSig:
			cands = append(cands, typedast.NewSubsetRef(x.Pos(), sig))
		}
	}
	for _, sig := range e.graph.PrimSigs() {
		for _, f := range sig.Fields {
			if f.Name == x.Name {
				cands = append(cands, typedast.NewFieldRef(x.Pos(), f))
			}
		}
	}
	for _, fn := range e.funcs[x.Name] {
		if len(fn.Params) == 0 {
			cands = append(cands, typedast.NewCall(x.Pos(), fn, nil, 0))
		} else {
			cands = append(cands, typedast.NewExprBadCall(x.Pos(), fn, nil, 0))
		}
	}
	if len(cands) == 0 {
		return e.fail(x.Pos(), errs.Syntax, "unknown name %q", x.Name)
	}
	if len(cands) == 1 {
		return cands[0]
	}
	return typedast.NewExprChoice(x.Pos(), cands)
}

// intLit range-checks against the 32-bit signed bound spec.md §6 requires.
func (e *elaborator) intLit(x *ast.IntExpr) typedast.Expr {
	if x.Value > math.MaxInt32 || x.Value < math.MinInt32 {
		return e.fail(x.Pos(), errs.Syntax, "integer literal %d is outside the 32-bit signed range", x.Value)
	}
	return typedast.NewIntLit(x.Pos(), x.Value)
}

func (e *elaborator) unary(x *ast.UnaryExpr, sc *scope) typedast.Expr {
	operand := e.typecheck(x.X, sc)
	resolved, err := e.resolveNow(operand, nil, x.X.Pos())
	if err != nil {
		return resolved
	}
	t, err := typeops.Unary(e.ctx, e.cfg.ClosureCancelCheckEvery, x.Op, resolved.Type(), x.Pos())
	if err != nil {
		return e.failErr(x.Pos(), err)
	}
	if err := typeops.CheckArityCeiling(t, e.cfg.MaxArity, x.Pos()); err != nil {
		return e.failErr(x.Pos(), err)
	}
	return typedast.NewUnary(x.Pos(), x.Op, resolved, t)
}

func (e *elaborator) binary(x *ast.BinaryExpr, sc *scope) typedast.Expr {
	lhs := e.typecheck(x.X, sc)
	resolvedL, errL := e.resolveNow(lhs, nil, x.X.Pos())
	rhs := e.typecheck(x.Y, sc)
	resolvedR, errR := e.resolveNow(rhs, nil, x.Y.Pos())
	if errL != nil {
		return resolvedL
	}
	if errR != nil {
		return resolvedR
	}
	if x.Op == ast.Equals && !resolvedL.Type().Intersects(resolvedR.Type()) {
		e.sink.Addf(errs.Warning, x.Pos(), "equality between disjoint types %v and %v is always false", resolvedL.Type(), resolvedR.Type())
	}
	t, err := typeops.Binary(x.Op, resolvedL.Type(), resolvedR.Type(), x.Pos())
	if err != nil {
		return e.failErr(x.Pos(), err)
	}
	if err := typeops.CheckArityCeiling(t, e.cfg.MaxArity, x.Pos()); err != nil {
		return e.failErr(x.Pos(), err)
	}
	return typedast.NewBinary(x.Pos(), x.Op, resolvedL, resolvedR, t)
}

// isSigIntRef reports whether x is a direct reference to the builtin Int
// signature, the only right-hand side ExpDot.check special-cases into a
// cast rather than a join or call.
func (e *elaborator) isSigIntRef(x typedast.Expr) bool {
	ref, ok := x.(*typedast.SigRef)
	return ok && ref.Sig == e.graph.Builtins.SIGINT
}

// dot elaborates Alloy's overloaded "."  operator: a relational join, a
// (possibly partial) function/predicate call, or the A.Int integer cast.
// Grounded on ExpDot.check/process/applicable from the original analyzer.
func (e *elaborator) dot(x *ast.DotExpr, sc *scope) typedast.Expr {
	leftCand := e.typecheck(x.Left, sc)
	left, errL := e.resolveNow(leftCand, nil, x.Left.Pos())
	if errL != nil {
		return left
	}
	right := e.typecheck(x.Right, sc)

	if left.Type().IsInt() && e.isSigIntRef(right) {
		return typedast.NewCast2SigInt(x.Pos(), left)
	}

	if choice, ok := right.(*typedast.ExprChoice); ok && choice.State() == typedast.Open {
		newCands := make([]typedast.Expr, 0, len(choice.Candidates))
		for _, c := range choice.Candidates {
			newCands = append(newCands, e.chainDot(x, left, c))
		}
		return typedast.NewExprChoice(x.Pos(), newCands)
	}
	return e.chainDot(x, left, right)
}

// chainDot implements ExpDot.process's per-candidate logic: extend a
// partial call with one more argument (promoting it to a full Call if that
// makes it applicable), or fall back to a relational join.
func (e *elaborator) chainDot(x *ast.DotExpr, left, right typedast.Expr) typedast.Expr {
	if bc, ok := right.(*typedast.ExprBadCall); ok && len(bc.Args) < len(bc.Fun.Params) {
		newArgs := make([]typedast.Expr, 0, len(bc.Args)+1)
		newArgs = append(newArgs, bc.Args...)
		newArgs = append(newArgs, left)
		if e.applicable(bc.Fun, newArgs) {
			return typedast.NewCall(x.Pos(), bc.Fun, newArgs, bc.ExtraWeight())
		}
		return typedast.NewExprBadCall(x.Pos(), bc.Fun, newArgs, bc.ExtraWeight())
	}
	return e.joinNode(x.Pos(), left, right)
}

func (e *elaborator) joinNode(pos errs.Pos, left, right typedast.Expr) typedast.Expr {
	lt := left.Type().WithoutIntAndBool()
	t, err := typeops.Join(lt, right.Type(), pos)
	if err != nil {
		return e.failErr(pos, err)
	}
	if err := typeops.CheckArityCeiling(t, e.cfg.MaxArity, pos); err != nil {
		return e.failErr(pos, err)
	}
	return typedast.NewBinary(pos, ast.Join, left, right, t)
}

// applicable reports whether fn's parameters have a reasonable intersection
// with args: same rule as ExpDot.applicable, used both to decide when a
// partial call becomes a full Call and to check an already-full CallExpr.
func (e *elaborator) applicable(fn *typedast.FuncSig, args []typedast.Expr) bool {
	if len(fn.Params) > len(args) {
		return false
	}
	for i, p := range fn.Params {
		argType := args[i].Type()
		if !argType.HasCommonArity(p.Typ) {
			return false
		}
		if argType.HasTuple() && p.Typ.HasTuple() && !argType.Intersects(p.Typ) {
			return false
		}
	}
	return true
}

func (e *elaborator) quant(x *ast.QuantExpr, sc *scope) typedast.Expr {
	inner := newScope(sc)
	var vars []*typedast.VarDecl
	ok := true
	for _, p := range x.Vars {
		typ, err := typeops.DeclaredType(e.ctx, e.cfg.ClosureCancelCheckEvery, e.cfg.MaxArity, e.graph, p.Type)
		if err != nil {
			e.failErr(p.Pos(), err)
			ok = false
			continue
		}
		for _, name := range p.Names {
			v := &typedast.VarDecl{NamePos: p.Pos(), Name: name, Typ: typ}
			vars = append(vars, v)
			inner.bind(v)
		}
	}
	if !ok {
		return e.fail(x.Pos(), errs.Type, "quantifier %q has an invalid bound-variable declaration", x.Op)
	}

	want := reltype.FORMULA
	if x.Op == ast.SumQuant {
		want = reltype.INT
	}
	bodyCand := e.typecheck(x.Body, inner)
	body, err := e.resolveNow(bodyCand, want, x.Body.Pos())
	if err != nil {
		return e.fail(x.Pos(), errs.Type, "quantifier body does not match the expected type")
	}
	return typedast.NewQuant(x.Pos(), x.Op, vars, body, want)
}

func (e *elaborator) let(x *ast.LetExpr, sc *scope) typedast.Expr {
	valCand := e.typecheck(x.Value, sc)
	val, err := e.resolveNow(valCand, nil, x.Value.Pos())
	if err != nil {
		return val
	}
	inner := newScope(sc)
	v := &typedast.VarDecl{NamePos: x.Pos(), Name: x.Name, Typ: val.Type()}
	inner.bind(v)
	bodyCand := e.typecheck(x.Body, inner)
	body, err := e.resolveNow(bodyCand, nil, x.Body.Pos())
	if err != nil {
		return body
	}
	return typedast.NewLet(x.Pos(), v, val, body)
}

// call elaborates a fully-written f[a, b, ...] call: unlike the dot-chained
// partial application path, every argument is already present. x.Fun may
// name more than one overload (spec.md §8, scenario S4); since the
// argument types are what picks an overload, each argument is resolved
// without a per-parameter constraint first, and every overload whose
// parameters are applicable to the resolved arguments becomes a Call
// candidate. One applicable overload resolves immediately; more than one
// is left as an ExprChoice for the surrounding context (or an outright
// Ambiguous diagnostic) to settle, exactly as a bare overloaded name does.
func (e *elaborator) call(x *ast.CallExpr, sc *scope) typedast.Expr {
	overloads, ok := e.funcs[x.Fun]
	if !ok {
		return e.fail(x.Pos(), errs.Syntax, "unknown function or predicate %q", x.Fun)
	}
	args := make([]typedast.Expr, len(x.Args))
	for i, a := range x.Args {
		cand := e.typecheck(a, sc)
		resolved, err := e.resolveNow(cand, nil, a.Pos())
		if err != nil {
			return resolved
		}
		args[i] = resolved
	}
	var cands []typedast.Expr
	for _, fn := range overloads {
		if len(args) != len(fn.Params) {
			continue
		}
		if e.applicable(fn, args) {
			cands = append(cands, typedast.NewCall(x.Pos(), fn, args, 0))
		}
	}
	if len(cands) == 0 {
		return e.fail(x.Pos(), errs.Type, "no overload of %q accepts these argument types", x.Fun)
	}
	if len(cands) == 1 {
		return cands[0]
	}
	return typedast.NewExprChoice(x.Pos(), cands)
}

func (e *elaborator) ite(x *ast.ITEExpr, sc *scope) typedast.Expr {
	condCand := e.typecheck(x.Cond, sc)
	cond, err := e.resolveNow(condCand, reltype.FORMULA, x.Cond.Pos())
	if err != nil {
		return cond
	}
	thenCand := e.typecheck(x.Then, sc)
	then, errT := e.resolveNow(thenCand, nil, x.Then.Pos())
	elseCand := e.typecheck(x.Else, sc)
	els, errE := e.resolveNow(elseCand, nil, x.Else.Pos())
	if errT != nil {
		return then
	}
	if errE != nil {
		return els
	}
	t := then.Type().Merge(els.Type())
	return typedast.NewITE(x.Pos(), cond, then, els, t)
}
