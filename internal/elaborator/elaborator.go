// Package elaborator implements pass 2 (spec.md §4.G): it type-checks and
// disambiguates every fact, assert, command target, and function/predicate
// body left untyped by internal/resolver, now that every signature, field,
// and function/predicate signature in the module is known.
//
// Each overloaded construct (a bare name, a dot that could be a join or a
// call, a partial application) is built bottom-up as a candidate set
// (typedast.ExprChoice), grounded on the original analyzer's
// ExpDot.check/process and Sig.java's name-lookup rules. This module
// disambiguates a candidate set as soon as enough local context exists to
// pick one (the operator or call site it feeds into), rather than
// deferring every choice to one final global pass over the whole module:
// spec.md describes the two passes at the module granularity (resolve
// signatures, then check bodies) and leaves the exact propagation depth of
// the body-internal top-down pass unspecified, so this is recorded as a
// deliberate scope decision in the design ledger rather than an omission.
package elaborator

import (
	"context"
	"sort"

	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/config"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
	"github.com/alloy-rel/core/internal/resolver"
	"github.com/alloy-rel/core/internal/typedast"
)

// Result is everything pass 2 produces: the typed body of every function,
// predicate, fact, and assertion, plus the commands (which have no body of
// their own, only a Target name checked against Funcs/Asserts). FuncBodies
// is keyed by *typedast.FuncSig rather than by name since two overloads of
// the same name each have their own body.
type Result struct {
	FuncBodies map[*typedast.FuncSig]typedast.Expr
	Facts      map[string]typedast.Expr
	Asserts    map[string]typedast.Expr
	Commands   []*ast.CommandDecl
}

// scope is a chain of bound-variable lookup tables: one per quantifier,
// let, and the outermost one seeded with a function/predicate's parameters.
type scope struct {
	parent *scope
	vars   map[string]*typedast.VarDecl
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*typedast.VarDecl)}
}

func (s *scope) bind(v *typedast.VarDecl) { s.vars[v.Name] = v }

func (s *scope) lookup(name string) (*typedast.VarDecl, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

type elaborator struct {
	ctx   context.Context
	cfg   config.Options
	graph *reltype.Graph
	funcs map[string][]*typedast.FuncSig
	sink  *errs.Sink
}

// Elaborate runs pass 2 over out (the frozen output of resolver.Resolve),
// recovering at declaration granularity: one bad fact or function body does
// not prevent the rest of the module from being checked (spec.md §7).
func Elaborate(ctx context.Context, out *resolver.Output, cfg config.Options, sink *errs.Sink) *Result {
	e := &elaborator{ctx: ctx, cfg: cfg, graph: out.Graph, funcs: out.Funcs, sink: sink}

	res := &Result{
		FuncBodies: make(map[*typedast.FuncSig]typedast.Expr),
		Facts:      make(map[string]typedast.Expr),
		Asserts:    make(map[string]typedast.Expr),
		Commands:   out.Commands,
	}

	// out.Funcs is a map; iterate its names in sorted order so diagnostics
	// from different functions land in the same relative order on every
	// run, not whatever order Go's map iteration happens to pick.
	funcNames := make([]string, 0, len(out.Funcs))
	for name := range out.Funcs {
		funcNames = append(funcNames, name)
	}
	sort.Strings(funcNames)

	for _, name := range funcNames {
		overloads := out.Funcs[name]
		for _, fn := range overloads {
			if e.ctxCancelled() {
				sink.Addf(errs.Cancelled, fn.DeclPos, "elaboration cancelled before %q was checked", name)
				continue
			}
			body := out.FuncBodies[fn]
			if body == nil {
				// A function/predicate with no body is a syntax error the
				// parser should have already caught; treat it as vacuously
				// true rather than panicking on a nil AST node.
				continue
			}
			sc := newScope(nil)
			for _, p := range fn.Params {
				sc.bind(p)
			}
			want := fn.Return // nil means "infer from body"
			cand := e.typecheck(body, sc)
			resolved, err := e.resolveNow(cand, want, body.Pos())
			if err != nil {
				continue
			}
			res.FuncBodies[fn] = resolved
		}
	}

	for _, f := range out.Facts {
		if e.ctxCancelled() {
			sink.Addf(errs.Cancelled, f.Pos(), "elaboration cancelled before fact %q was checked", f.Name)
			continue
		}
		cand := e.typecheck(f.Body, newScope(nil))
		resolved, err := e.resolveNow(cand, reltype.FORMULA, f.Body.Pos())
		if err != nil {
			continue
		}
		res.Facts[f.Name] = resolved
	}

	for _, a := range out.Asserts {
		if e.ctxCancelled() {
			sink.Addf(errs.Cancelled, a.Pos(), "elaboration cancelled before assertion %q was checked", a.Name)
			continue
		}
		cand := e.typecheck(a.Body, newScope(nil))
		resolved, err := e.resolveNow(cand, reltype.FORMULA, a.Body.Pos())
		if err != nil {
			continue
		}
		res.Asserts[a.Name] = resolved
	}

	for _, c := range out.Commands {
		if _, isFunc := out.Funcs[c.Target]; isFunc {
			continue
		}
		found := false
		for _, a := range out.Asserts {
			if a.Name == c.Target {
				found = true
				break
			}
		}
		if !found {
			sink.Addf(errs.Syntax, c.Pos(), "command %q targets unknown predicate or assertion %q", c.Name, c.Target)
		}
	}

	return res
}

func (e *elaborator) ctxCancelled() bool {
	select {
	case <-e.ctx.Done():
		return true
	default:
		return false
	}
}

// fail records a diagnostic and returns a Failed ExprChoice with no
// candidates: EMPTY/zero-weight, so arithmetic on its Type() propagates
// harmlessly rather than panicking the rest of the tree.
func (e *elaborator) fail(pos errs.Pos, kind errs.Kind, format string, args ...any) *typedast.ExprChoice {
	e.sink.Addf(kind, pos, format, args...)
	c := typedast.NewExprChoice(pos, nil)
	c.Fail()
	return c
}

// failErr records err (already an *errs.Diagnostic from reltype/typeops in
// every case this package produces) and returns a Failed ExprChoice.
func (e *elaborator) failErr(pos errs.Pos, err error) *typedast.ExprChoice {
	d, ok := err.(*errs.Diagnostic)
	if !ok {
		d = errs.New(errs.Syntax, pos, "%s", err)
	}
	e.sink.Add(d)
	c := typedast.NewExprChoice(pos, nil)
	c.Fail()
	return c
}
