package resolver

import (
	"context"
	"testing"

	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/config"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
)

func pos(line int) errs.Pos { return errs.Pos{File: "m.als", Line: line} }

func name(n string) ast.Expr { return &ast.NameExpr{ExprPos: pos(0), Name: n} }

func run(t *testing.T, prog *ast.Program) (*Output, *errs.Sink) {
	t.Helper()
	sink := errs.NewSink()
	out := Resolve(context.Background(), prog, config.Default(), sink)
	return out, sink
}

func TestToplevelSigDefaultsToUniv(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "Person"},
	}}
	out, sink := run(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	person, ok := out.Graph.LookupPrimSig("Person")
	if !ok {
		t.Fatalf("expected Person to be registered")
	}
	if person.Parent == nil || person.Parent.Name != "univ" {
		t.Errorf("a sig with no extends clause should default to univ, got %v", person.Parent)
	}
}

func TestSigAliasesAreLookupable(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "Person", Aliases: []string{"Human"}},
	}}
	out, sink := run(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	person, ok := out.Graph.LookupPrimSig("Person")
	if !ok {
		t.Fatalf("expected Person to be registered")
	}
	alias, ok := out.Graph.LookupPrimSig("Human")
	if !ok || alias != person {
		t.Errorf("expected alias %q to resolve to the same PrimSig as %q", "Human", "Person")
	}
}

func TestSubsetSigAliasesAreLookupable(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "Person"},
		&ast.SigDecl{DeclPos: pos(2), Name: "Readable", In: []string{"Person"}, Aliases: []string{"Legible"}},
	}}
	out, sink := run(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	readable, ok := out.Graph.Lookup("Readable")
	if !ok {
		t.Fatalf("expected Readable to be registered")
	}
	alias, ok := out.Graph.Lookup("Legible")
	if !ok || alias != readable {
		t.Errorf("expected alias %q to resolve to the same SubsetSig as %q", "Legible", "Readable")
	}
}

func TestExtendsResolvesRegardlessOfDeclarationOrder(t *testing.T) {
	// Student extends Person, but Student is declared first in the file.
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "Student", Extends: "Person"},
		&ast.SigDecl{DeclPos: pos(2), Name: "Person"},
	}}
	out, sink := run(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	student, _ := out.Graph.LookupPrimSig("Student")
	person, _ := out.Graph.LookupPrimSig("Person")
	if student.Parent != person {
		t.Errorf("Student.Parent = %v, want Person", student.Parent)
	}
	found := false
	for _, c := range person.Children() {
		if c == student {
			found = true
		}
	}
	if !found {
		t.Errorf("Person's children should include Student")
	}
}

func TestExtendUnknownSigIsSyntaxError(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "Student", Extends: "Ghost"},
	}}
	_, sink := run(t, prog)
	if !sink.HasErrors() {
		t.Fatalf("expected an error extending an unknown sig")
	}
	d := sink.All()[0]
	if d.Kind != errs.Syntax {
		t.Errorf("expected a Syntax diagnostic, got %v", d.Kind)
	}
}

func TestExtendSubsetSigIsIllegal(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "Person"},
		&ast.SigDecl{DeclPos: pos(2), Name: "Readable", In: []string{"Person"}},
		&ast.SigDecl{DeclPos: pos(3), Name: "Bad", Extends: "Readable"},
	}}
	_, sink := run(t, prog)
	found := false
	for _, d := range sink.All() {
		if d.Kind == errs.Syntax {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Syntax diagnostic for extending a subset signature")
	}
}

func TestSubsetSigTypeUnionsParents(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "Person"},
		&ast.SigDecl{DeclPos: pos(2), Name: "Book"},
		&ast.SigDecl{DeclPos: pos(3), Name: "Readable", In: []string{"Person", "Book"}},
	}}
	out, sink := run(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	v, ok := out.Graph.Lookup("Readable")
	if !ok {
		t.Fatalf("expected Readable to be registered")
	}
	sub, ok := v.(*reltype.SubsetSig)
	if !ok {
		t.Fatalf("expected Readable to resolve to a *reltype.SubsetSig, got %T", v)
	}
	if sub.Type().Size() != 2 {
		t.Errorf("Readable's type should have 2 entries, got %d", sub.Type().Size())
	}
}

func TestFieldTypeIsProductOfOwnerAndDeclared(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "Person", Fields: []*ast.FieldDecl{
			{DeclPos: pos(1), Names: []string{"friend"}, Type: name("Person")},
		}},
	}}
	out, sink := run(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	person, _ := out.Graph.LookupPrimSig("Person")
	if len(person.Fields) != 1 {
		t.Fatalf("expected 1 field on Person, got %d", len(person.Fields))
	}
	f := person.Fields[0]
	if f.Name != "friend" || f.Type.Arity() != 2 {
		t.Errorf("friend field: name=%q arity=%d, want friend/2", f.Name, f.Type.Arity())
	}
}

func TestJoinOfTwoUnaryFieldTypesIsATypeError(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "A"},
		&ast.SigDecl{DeclPos: pos(2), Name: "B"},
		&ast.SigDecl{DeclPos: pos(3), Name: "C", Fields: []*ast.FieldDecl{
			{DeclPos: pos(3), Names: []string{"bad"}, Type: &ast.DotExpr{
				ExprPos: pos(3), Left: name("A"), Right: name("B"),
			}},
		}},
	}}
	_, sink := run(t, prog)
	found := false
	for _, d := range sink.All() {
		if d.Kind == errs.Type {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Type diagnostic for joining two unary field types, got %v", sink.All())
	}
}

func TestPredicateReturnTypeIsFormula(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.PredDecl{DeclPos: pos(1), Name: "alwaysTrue"},
	}}
	out, sink := run(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	overloads, ok := out.Funcs["alwaysTrue"]
	if !ok || len(overloads) != 1 || !overloads[0].IsPred {
		t.Fatalf("expected a single registered predicate alwaysTrue")
	}
	if overloads[0].Return != reltype.FORMULA {
		t.Errorf("predicate return type should be the FORMULA singleton, got %v", overloads[0].Return)
	}
}

func TestDuplicateFunctionSignatureIsSyntaxError(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.FunDecl{DeclPos: pos(1), Name: "f"},
		&ast.FunDecl{DeclPos: pos(2), Name: "f"},
	}}
	_, sink := run(t, prog)
	if !sink.HasErrors() {
		t.Fatalf("expected an error redeclaring function f with the same (empty) parameter signature")
	}
}

func TestOverloadedFunctionNameIsAccepted(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "A"},
		&ast.SigDecl{DeclPos: pos(2), Name: "B"},
		&ast.FunDecl{DeclPos: pos(3), Name: "p", Params: []*ast.ParamDecl{
			{NamePos: pos(3), Names: []string{"x"}, Type: name("A")},
		}, Return: name("A")},
		&ast.FunDecl{DeclPos: pos(4), Name: "p", Params: []*ast.ParamDecl{
			{NamePos: pos(4), Names: []string{"x"}, Type: name("B")},
		}, Return: name("B")},
	}}
	out, sink := run(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors overloading p by parameter type: %v", sink.All())
	}
	if len(out.Funcs["p"]) != 2 {
		t.Errorf("expected 2 overloads of p, got %d", len(out.Funcs["p"]))
	}
}

func TestGraphIsFrozenAfterResolve(t *testing.T) {
	prog := &ast.Program{}
	out, _ := run(t, prog)
	if !out.Graph.IsFrozen() {
		t.Errorf("expected the graph to be frozen once Resolve returns")
	}
}
