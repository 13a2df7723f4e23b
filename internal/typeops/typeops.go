// Package typeops dispatches an internal/ast operator onto internal/reltype
// Types. Both internal/resolver (elaborating a declared type expression
// end to end) and internal/elaborator (computing a candidate's Type from
// its already-elaborated operands during the bottom-up pass) need the
// exact same operator semantics; this package is the single place that
// dispatch lives, so the two passes can never quietly drift apart.
package typeops

import (
	"context"

	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
)

// Join applies Type.Join with the arity-1-both-sides guard spec.md §8's S6
// scenario requires: Type.Join itself mirrors Type.java's own arity-sum
// guard and silently returns an empty Type for two purely-unary operands,
// so every caller of Join must check first and raise the diagnostic itself.
func Join(l, r *reltype.Type, pos errs.Pos) (*reltype.Type, error) {
	if l.Arity() == 1 && r.Arity() == 1 {
		return nil, errs.New(errs.Type, pos, "cannot join two unary sets")
	}
	return l.Join(r)
}

// CheckArityCeiling enforces a configured arity ceiling that may sit below
// reltype's hard 30-arity limit (spec.md §6's embedding-context override).
func CheckArityCeiling(t *reltype.Type, maxArity int, pos errs.Pos) error {
	for k := maxArity + 1; k <= reltype.MaxArity; k++ {
		if t.HasArity(k) {
			return errs.New(errs.TypeArity, pos, "relation of arity %d exceeds the configured maximum of %d", k, maxArity)
		}
	}
	return nil
}

// Unary applies op to operand, threading ctx/checkEvery through to Closure
// (the only operator that can run long enough to need cancellation).
func Unary(ctx context.Context, checkEvery int, op ast.UnaryOp, operand *reltype.Type, pos errs.Pos) (*reltype.Type, error) {
	switch op {
	case ast.SetOf:
		return operand, nil
	case ast.Not, ast.No, ast.Some, ast.One, ast.Lone:
		return reltype.FORMULA, nil
	case ast.Transpose:
		return operand.Transpose(), nil
	case ast.Closure, ast.RClosure:
		// Reflexivity does not change which PrimSig tuples are reachable
		// at the Type level (only the concrete relation a SAT backend
		// builds), so ^r and *r share this implementation.
		return operand.Closure(ctx, checkEvery)
	case ast.Cardinality:
		return reltype.INT, nil
	default:
		return nil, errs.New(errs.Syntax, pos, "unsupported unary operator")
	}
}

// DeclaredType computes the Type denoted by a declaration-position
// expression: a field's declared type, a function/predicate parameter or
// return type, or a quantifier's bound-variable type. Only the sublanguage
// the original grammar permits there is supported — sig names, multiplicity
// markers, and the pure relational operators from spec.md §4.C. Resolver
// and Elaborator both call this rather than each walking the sublanguage
// themselves, so a future operator added to one pass is automatically
// available to the other. Quantifiers, let, calls, and if-then-else are
// pass-2-only body constructs and are rejected here with a Syntax
// diagnostic rather than silently misinterpreted.
func DeclaredType(ctx context.Context, checkEvery, maxArity int, graph *reltype.Graph, e ast.Expr) (*reltype.Type, error) {
	switch x := e.(type) {
	case *ast.NameExpr:
		v, ok := graph.Lookup(x.Name)
		if !ok {
			return nil, errs.New(errs.Syntax, x.Pos(), "unknown signature %q", x.Name)
		}
		switch sig := v.(type) {
		case *reltype.PrimSig:
			return reltype.Make(sig), nil
		case *reltype.SubsetSig:
			return sig.Type(), nil
		default:
			return nil, errs.New(errs.Fatal, x.Pos(), "unexpected lookup result for %q", x.Name)
		}

	case *ast.IntExpr:
		return reltype.INT, nil

	case *ast.UnaryExpr:
		operand, err := DeclaredType(ctx, checkEvery, maxArity, graph, x.X)
		if err != nil {
			return nil, err
		}
		t, err := Unary(ctx, checkEvery, x.Op, operand, x.Pos())
		if err != nil {
			return nil, err
		}
		return t, CheckArityCeiling(t, maxArity, x.Pos())

	case *ast.BinaryExpr:
		lt, err := DeclaredType(ctx, checkEvery, maxArity, graph, x.X)
		if err != nil {
			return nil, err
		}
		rt, err := DeclaredType(ctx, checkEvery, maxArity, graph, x.Y)
		if err != nil {
			return nil, err
		}
		t, err := Binary(x.Op, lt, rt, x.Pos())
		if err != nil {
			return nil, err
		}
		return t, CheckArityCeiling(t, maxArity, x.Pos())

	case *ast.DotExpr:
		lt, err := DeclaredType(ctx, checkEvery, maxArity, graph, x.Left)
		if err != nil {
			return nil, err
		}
		rt, err := DeclaredType(ctx, checkEvery, maxArity, graph, x.Right)
		if err != nil {
			return nil, err
		}
		t, err := Join(lt, rt, x.Pos())
		if err != nil {
			return nil, err
		}
		return t, CheckArityCeiling(t, maxArity, x.Pos())

	default:
		return nil, errs.New(errs.Syntax, e.Pos(), "this expression form is only allowed in a declaration body, not a declared type")
	}
}

// Binary applies op to (l, r), the already-elaborated Types of a binary
// expression's two operands.
func Binary(op ast.BinaryOp, l, r *reltype.Type, pos errs.Pos) (*reltype.Type, error) {
	switch op {
	case ast.And, ast.Or, ast.Implies, ast.Iff, ast.In, ast.Equals,
		ast.Lt, ast.Lte, ast.Gt, ast.Gte:
		return reltype.FORMULA, nil
	case ast.Union:
		return l.Merge(r), nil
	case ast.Intersect:
		return l.Intersect(r), nil
	case ast.Difference, ast.Override:
		// A difference or override only removes or replaces tuples
		// already reachable from the left operand, so the left operand's
		// Type is a sound, if conservative, upper bound.
		return l, nil
	case ast.Product:
		return l.Product(r)
	case ast.Join:
		return Join(l, r, pos)
	case ast.DomainRestrict:
		return l.DomainRestrict(r), nil
	case ast.RangeRestrict:
		return l.RangeRestrict(r), nil
	case ast.IntPlus, ast.IntMinus:
		return reltype.INT, nil
	default:
		return nil, errs.New(errs.Syntax, pos, "unsupported binary operator")
	}
}
