package resolver

import (
	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
	"github.com/alloy-rel/core/internal/typedast"
)

// asDiagnostic normalizes an error from elabTypeExpr (already an
// *errs.Diagnostic in every case the algebra or this package itself can
// raise) into one, falling back to a generic Syntax wrapper so a stray
// plain error never panics the sink.
func asDiagnostic(err error, pos errs.Pos) *errs.Diagnostic {
	if d, ok := err.(*errs.Diagnostic); ok {
		return d
	}
	return errs.New(errs.Syntax, pos, "%s", err)
}

// elaborateFields implements spec.md §4.F step 3: each field declaration's
// written type expression becomes sig ⋈ T — here, product(Type.make(sig),
// T), since Type.make(sig) is already the singleton {sig} and Product
// simply prepends that single column, which is exactly "restrict the first
// column to the owner" for a singleton left operand.
func (r *resolver) elaborateFields() {
	for sig, decl := range r.declOfPrim {
		owner := reltype.Make(sig)
		for _, fd := range decl.Fields {
			declared, err := r.elabTypeExpr(fd.Type)
			if err != nil {
				r.sink.Add(asDiagnostic(err, fd.Pos()))
				continue
			}
			full, err := owner.Product(declared)
			if err != nil {
				r.sink.Add(asDiagnostic(err, fd.Pos()))
				continue
			}
			if err := r.checkArityCeiling(full, fd.Pos()); err != nil {
				r.sink.Add(asDiagnostic(err, fd.Pos()))
				continue
			}
			mult := convertMult(fd.Mult)
			for _, name := range fd.Names {
				sig.Fields = append(sig.Fields, &reltype.Field{
					Name:     name,
					Owner:    sig,
					Mult:     mult,
					Declared: declared,
					Type:     full,
				})
			}
		}
	}
	for sub, decl := range r.declOfSubset {
		if len(decl.Fields) > 0 {
			r.sink.Addf(errs.Syntax, decl.Pos(), "subset signature %q cannot declare fields", sub.Name)
		}
	}
}

// elaborateFuncs implements spec.md §4.F step 4: parameter and return (or,
// for predicates, the fixed FORMULA) Types are resolved now; the function
// or predicate body is left untyped for the elaborator.
func (r *resolver) elaborateFuncs(prog *ast.Program, out *Output) {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FunDecl:
			params, ok := r.elaborateParams(d.Params)
			if !ok {
				continue
			}
			retType, err := r.elabReturn(d.Return)
			if err != nil {
				r.sink.Add(asDiagnostic(err, d.Pos()))
				continue
			}
			r.declareFunc(out, &typedast.FuncSig{Name: d.Name, Params: params, Return: retType, DeclPos: d.Pos()}, d.Body)
		case *ast.PredDecl:
			params, ok := r.elaborateParams(d.Params)
			if !ok {
				continue
			}
			r.declareFunc(out, &typedast.FuncSig{Name: d.Name, Params: params, Return: reltype.FORMULA, IsPred: true, DeclPos: d.Pos()}, d.Body)
		}
	}
}

// declareFunc registers fn as one overload of its name. Alloy permits the
// same function or predicate name to be declared more than once as long as
// the overloads are distinguishable by parameter type (spec.md §8, scenario
// S4: "fun p[x: A]: A" and "fun p[x: B]: B" coexist for disjoint A, B); what
// is rejected is only a second declaration with the exact same parameter
// arity and types, which could never be told apart at a call site.
func (r *resolver) declareFunc(out *Output, fn *typedast.FuncSig, body ast.Expr) {
	for _, other := range out.Funcs[fn.Name] {
		if sameSignature(other, fn) {
			r.sink.Addf(errs.Syntax, fn.DeclPos, "function or predicate %q is already declared with this parameter signature", fn.Name)
			return
		}
	}
	out.Funcs[fn.Name] = append(out.Funcs[fn.Name], fn)
	out.FuncBodies[fn] = body
}

// sameSignature reports whether a and b have identical parameter arity and
// types, the condition under which two declarations of the same name can
// never be disambiguated by a caller and so must be rejected as a plain
// redeclaration rather than accepted as an overload.
func sameSignature(a, b *typedast.FuncSig) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i, p := range a.Params {
		if !p.Typ.Equal(b.Params[i].Typ) {
			return false
		}
	}
	return true
}

func (r *resolver) elaborateParams(params []*ast.ParamDecl) ([]*typedast.VarDecl, bool) {
	var out []*typedast.VarDecl
	ok := true
	for _, p := range params {
		typ, err := r.elabTypeExpr(p.Type)
		if err != nil {
			r.sink.Add(asDiagnostic(err, p.Pos()))
			ok = false
			continue
		}
		for _, name := range p.Names {
			out = append(out, &typedast.VarDecl{NamePos: p.Pos(), Name: name, Typ: typ})
		}
	}
	return out, ok
}

// elabReturn elaborates an optional declared return type. A nil Return
// expression means the function's return type is inferred from its body
// during pass 2 (spec.md §4.F step 4).
func (r *resolver) elabReturn(e ast.Expr) (*reltype.Type, error) {
	if e == nil {
		return nil, nil
	}
	return r.elabTypeExpr(e)
}
