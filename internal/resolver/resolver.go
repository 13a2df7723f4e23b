// Package resolver implements pass 1 (spec.md §4.F): it walks the untyped
// parse tree, registers every signature into a reltype.Graph, resolves
// extends/in parent references, computes field and function/predicate
// Types, and freezes the Graph once done. Expression bodies (fact/assert/
// pred/fun bodies) are left untyped; internal/elaborator handles those in
// pass 2, once every sig, field, and function signature is known.
package resolver

import (
	"context"

	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/config"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
	"github.com/alloy-rel/core/internal/typedast"
)

// Output is everything pass 1 produces: a frozen signature graph, resolved
// function/predicate signatures, and the untyped bodies pass 2 still needs
// to check.
//
// Funcs maps a name to every overload declared under it: Alloy allows a
// function or predicate name to be declared more than once as long as the
// overloads are distinguishable by parameter type (spec.md §8, scenario
// S4), so a single *typedast.FuncSig per name is not enough.
type Output struct {
	Graph *reltype.Graph
	Funcs map[string][]*typedast.FuncSig
	// FuncBodies holds the untyped body of each overload in Funcs, keyed by
	// the *typedast.FuncSig itself rather than its name (two overloads share
	// a name): the *ast.FunDecl.Body or *ast.PredDecl.Body the elaborator
	// still needs to check now that every signature is known.
	FuncBodies map[*typedast.FuncSig]ast.Expr
	Facts      []*ast.FactDecl
	Asserts    []*ast.AssertDecl
	Commands   []*ast.CommandDecl
}

type resolver struct {
	ctx   context.Context
	cfg   config.Options
	graph *reltype.Graph
	sink  *errs.Sink

	declOfPrim    map[*reltype.PrimSig]*ast.SigDecl
	declOfSubset  map[*reltype.SubsetSig]*ast.SigDecl
	pendingExtend map[*reltype.PrimSig]string
}

// Resolve runs pass 1 over prog, recording every failure in sink and
// recovering at declaration granularity: one bad sig or function does not
// prevent the rest of the module from resolving (spec.md §7).
func Resolve(ctx context.Context, prog *ast.Program, cfg config.Options, sink *errs.Sink) *Output {
	r := &resolver{
		ctx:           ctx,
		cfg:           cfg,
		graph:         reltype.NewGraph(),
		sink:          sink,
		declOfPrim:    make(map[*reltype.PrimSig]*ast.SigDecl),
		declOfSubset:  make(map[*reltype.SubsetSig]*ast.SigDecl),
		pendingExtend: make(map[*reltype.PrimSig]string),
	}
	r.aliasBuiltinNames()

	out := &Output{Funcs: make(map[string][]*typedast.FuncSig), FuncBodies: make(map[*typedast.FuncSig]ast.Expr)}

	r.registerSigs(prog)
	r.resolveHierarchy()
	r.elaborateFields()
	r.elaborateFuncs(prog, out)

	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FactDecl:
			out.Facts = append(out.Facts, d)
		case *ast.AssertDecl:
			out.Asserts = append(out.Asserts, d)
		case *ast.CommandDecl:
			out.Commands = append(out.Commands, d)
		}
	}

	r.graph.Freeze()
	out.Graph = r.graph
	return out
}

// aliasBuiltinNames registers config-overridden names for univ/none/Int
// alongside their defaults, so a session configured with non-default
// builtin names still accepts the conventional ones (and vice versa).
func (r *resolver) aliasBuiltinNames() {
	aliasIfCustom := func(name string, sig *reltype.PrimSig, def string) {
		if name != "" && name != def {
			// Ignore the error: a clash here means the custom name
			// collides with another builtin, which is a configuration
			// mistake surfaced more usefully once real sigs are declared.
			_ = r.graph.AliasBuiltin(name, sig)
		}
	}
	aliasIfCustom(r.cfg.UnivName, r.graph.Builtins.UNIV, "univ")
	aliasIfCustom(r.cfg.NoneName, r.graph.Builtins.NONE, "none")
	aliasIfCustom(r.cfg.SigIntName, r.graph.Builtins.SIGINT, "Int")
}

func convertMult(m ast.Mult) reltype.Mult {
	switch m {
	case ast.MultLone:
		return reltype.MultLone
	case ast.MultOne:
		return reltype.MultOne
	case ast.MultSome:
		return reltype.MultSome
	default:
		return reltype.MultNone
	}
}

// registerSigs implements spec.md §4.F step 1's first half: create every
// PrimSig under its declared name, setting the univ default here but
// deferring "extends NAME" resolution (the parent may be declared later in
// the file) to the second half, resolveHierarchy. Subset sigs are only
// recorded here; resolveHierarchy registers each one once its parent names
// are resolved, since the graph accepts no subset sig without parents.
func (r *resolver) registerSigs(prog *ast.Program) {
	for _, decl := range prog.Decls {
		sd, ok := decl.(*ast.SigDecl)
		if !ok {
			continue
		}
		if len(sd.In) > 0 {
			s := &reltype.SubsetSig{Name: sd.Name, Mult: convertMult(sd.Mult), Aliases: sd.Aliases}
			r.declOfSubset[s] = sd
			continue
		}
		s := &reltype.PrimSig{Name: sd.Name, IsAbstract: sd.Abstract, Mult: convertMult(sd.Mult), Aliases: sd.Aliases}
		if sd.Extends == "" {
			s.Parent = r.graph.Builtins.UNIV
		}
		if err := r.graph.AddPrimSig(s); err != nil {
			r.sink.Addf(errs.Syntax, sd.Pos(), "%s", err)
			continue
		}
		r.declOfPrim[s] = sd
		if sd.Extends != "" {
			r.pendingExtend[s] = sd.Extends
		}
	}
}

// resolveHierarchy implements the rest of step 1: textual parent
// references become PrimSig pointers, with the exact illegal-target
// checks ParaSig.resolveSup/resolveSups perform in the original analyzer.
func (r *resolver) resolveHierarchy() {
	for s, parentName := range r.pendingExtend {
		decl := r.declOfPrim[s]
		v, ok := r.graph.Lookup(parentName)
		if !ok {
			r.sink.Addf(errs.Syntax, decl.Pos(), "sig %q tries to extend a non-existent signature %q", s.Name, parentName)
			continue
		}
		parent, ok := v.(*reltype.PrimSig)
		if !ok {
			r.sink.Addf(errs.Syntax, decl.Pos(), "sig %q cannot extend a subset signature %q; a signature can only extend a toplevel signature", s.Name, parentName)
			continue
		}
		if parent == r.graph.Builtins.NONE {
			r.sink.Addf(errs.Syntax, decl.Pos(), "sig %q cannot extend the builtin %q signature", s.Name, parentName)
			continue
		}
		if parent == r.graph.Builtins.SIGINT {
			r.sink.Addf(errs.Syntax, decl.Pos(), "sig %q cannot extend the builtin %q signature", s.Name, parentName)
			continue
		}
		if err := r.graph.LinkParent(s, parent); err != nil {
			r.sink.Addf(errs.Fatal, decl.Pos(), "%s", err)
		}
	}

	for s, decl := range r.declOfSubset {
		for _, name := range decl.In {
			v, ok := r.graph.Lookup(name)
			if !ok {
				r.sink.Addf(errs.Syntax, decl.Pos(), "sig %q tries to be a subset of a non-existent signature %q", s.Name, name)
				continue
			}
			if v == r.graph.Builtins.NONE {
				r.sink.Addf(errs.Syntax, decl.Pos(), "sig %q cannot be a subset of the builtin none signature", s.Name)
				continue
			}
			if v == r.graph.Builtins.UNIV {
				r.sink.Addf(errs.Syntax, decl.Pos(), "sig %q is already implicitly a subset of the builtin univ signature", s.Name)
				continue
			}
			parent, ok := v.(*reltype.PrimSig)
			if !ok {
				r.sink.Addf(errs.Syntax, decl.Pos(), "sig %q cannot subset another subset signature %q", s.Name, name)
				continue
			}
			s.Parents = append(s.Parents, parent)
		}
		if len(s.Parents) == 0 {
			continue
		}
		if err := r.graph.AddSubsetSig(s); err != nil {
			r.sink.Addf(errs.Syntax, decl.Pos(), "%s", err)
		}
	}
}
