package resolver

import (
	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
	"github.com/alloy-rel/core/internal/typeops"
)

// elabTypeExpr computes the Type denoted by a declaration-position
// expression: a field's declared type, a function/predicate parameter or
// return type. The actual sublanguage walk lives in internal/typeops so
// this pass and the elaborator can never drift apart on operator semantics.
func (r *resolver) elabTypeExpr(e ast.Expr) (*reltype.Type, error) {
	return typeops.DeclaredType(r.ctx, r.cfg.ClosureCancelCheckEvery, r.cfg.MaxArity, r.graph, e)
}

// checkArityCeiling enforces config.Options.MaxArity, which may be set
// below the hard 30-arity ceiling reltype itself enforces (spec.md §6:
// "a place to override MAXARITY downward for embedding contexts"). Used for
// checks outside the declaration-type sublanguage itself, e.g. a field's
// full type after the owner column is prepended.
func (r *resolver) checkArityCeiling(t *reltype.Type, pos errs.Pos) error {
	return typeops.CheckArityCeiling(t, r.cfg.MaxArity, pos)
}
