package elaborator

import (
	"context"
	"testing"

	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/config"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
	"github.com/alloy-rel/core/internal/resolver"
	"github.com/alloy-rel/core/internal/typedast"
)

func pos(line int) errs.Pos { return errs.Pos{File: "m.als", Line: line} }

func name(n string) ast.Expr { return &ast.NameExpr{ExprPos: pos(0), Name: n} }

func compile(t *testing.T, prog *ast.Program) (*Result, *resolver.Output, *errs.Sink) {
	t.Helper()
	sink := errs.NewSink()
	cfg := config.Default()
	out := resolver.Resolve(context.Background(), prog, cfg, sink)
	res := Elaborate(context.Background(), out, cfg, sink)
	return res, out, sink
}

// S3: sig A { f: A }; A.f.f.f types to {A} (arity 1, no error); A.^f (the
// field's transitive closure) types to the arity-2 {A->A}.
func TestChainedJoinAndClosureOverAFieldOfItsOwnSig(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "A", Fields: []*ast.FieldDecl{
			{DeclPos: pos(1), Names: []string{"f"}, Type: name("A")},
		}},
		&ast.FactDecl{DeclPos: pos(2), Name: "chain", Body: &ast.BinaryExpr{
			ExprPos: pos(2), Op: ast.Equals,
			X: &ast.DotExpr{ExprPos: pos(2),
				Left: &ast.DotExpr{ExprPos: pos(2),
					Left:  &ast.DotExpr{ExprPos: pos(2), Left: name("A"), Right: name("f")},
					Right: name("f"),
				},
				Right: name("f"),
			},
			Y: name("A"),
		}},
		&ast.FactDecl{DeclPos: pos(3), Name: "closure", Body: &ast.BinaryExpr{
			ExprPos: pos(3), Op: ast.In,
			X: &ast.UnaryExpr{ExprPos: pos(3), Op: ast.Closure, X: name("f")},
			Y: &ast.BinaryExpr{ExprPos: pos(3), Op: ast.Product, X: name("A"), Y: name("A")},
		}},
	}}
	res, _, sink := compile(t, prog)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	chain, ok := res.Facts["chain"].(*typedast.Binary)
	if !ok {
		t.Fatalf("chain fact did not elaborate to a Binary, got %T", res.Facts["chain"])
	}
	chainType := chain.X.Type()
	if chainType.Arity() != 1 {
		t.Errorf("A.f.f.f should have arity 1, got %d", chainType.Arity())
	}
	closure, ok := res.Facts["closure"].(*typedast.Binary)
	if !ok {
		t.Fatalf("closure fact did not elaborate to a Binary, got %T", res.Facts["closure"])
	}
	closureType := closure.X.Type()
	if closureType.Arity() != 2 {
		t.Errorf("^f should have arity 2, got %d", closureType.Arity())
	}
}

// S6: A.B where both A and B are disjoint unary sigs is a Type error raised
// at the dot node, not inside Type.Join itself.
func TestSelfJoinOfTwoUnarySigsIsATypeError(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "A"},
		&ast.SigDecl{DeclPos: pos(2), Name: "B"},
		&ast.FactDecl{DeclPos: pos(3), Name: "bad", Body: &ast.DotExpr{
			ExprPos: pos(3), Left: name("A"), Right: name("B"),
		}},
	}}
	_, _, sink := compile(t, prog)
	found := false
	for _, d := range sink.All() {
		if d.Kind == errs.Type {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Type diagnostic joining two unary sigs, got %v", sink.All())
	}
}

// S2: A = B between disjoint sigs always type-checks (to FORMULA) but is
// flagged with a Warning, since the comparison can never hold.
func TestEqualityBetweenDisjointSigsWarns(t *testing.T) {
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.SigDecl{DeclPos: pos(1), Name: "A"},
		&ast.SigDecl{DeclPos: pos(2), Name: "B"},
		&ast.FactDecl{DeclPos: pos(3), Name: "p", Body: &ast.BinaryExpr{
			ExprPos: pos(3), Op: ast.Equals, X: name("A"), Y: name("B"),
		}},
	}}
	res, _, sink := compile(t, prog)
	body, ok := res.Facts["p"]
	if !ok {
		t.Fatalf("expected fact p to elaborate despite the warning")
	}
	if body.Type() != reltype.FORMULA {
		t.Errorf("A = B should still type-check to FORMULA, got %v", body.Type())
	}
	foundWarning := false
	for _, d := range sink.All() {
		if d.Kind == errs.Warning {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Errorf("expected a Warning diagnostic for A = B between disjoint sigs, got %v", sink.All())
	}
}

// S4: two functions both named p, over disjoint parameter sigs A and B.
// p[a] with a: A selects the A-overload uniquely; p[a] with a: A+B is
// Ambiguous between both overloads.
func TestOverloadedFunctionCallSelectsByArgumentType(t *testing.T) {
	base := func() []ast.Decl {
		return []ast.Decl{
			&ast.SigDecl{DeclPos: pos(1), Name: "A"},
			&ast.SigDecl{DeclPos: pos(2), Name: "B"},
			&ast.FunDecl{DeclPos: pos(3), Name: "p", Params: []*ast.ParamDecl{
				{NamePos: pos(3), Names: []string{"x"}, Type: name("A")},
			}, Return: name("A"), Body: name("x")},
			&ast.FunDecl{DeclPos: pos(4), Name: "p", Params: []*ast.ParamDecl{
				{NamePos: pos(4), Names: []string{"x"}, Type: name("B")},
			}, Return: name("B"), Body: name("x")},
		}
	}

	t.Run("unique", func(t *testing.T) {
		decls := append(base(), &ast.FunDecl{DeclPos: pos(5), Name: "useA", Params: []*ast.ParamDecl{
			{NamePos: pos(5), Names: []string{"a"}, Type: name("A")},
		}, Return: name("A"), Body: &ast.CallExpr{ExprPos: pos(5), Fun: "p", Args: []ast.Expr{name("a")}}})
		prog := &ast.Program{Decls: decls}
		res, out, sink := compile(t, prog)
		if sink.HasErrors() {
			t.Fatalf("unexpected errors selecting the unique overload: %v", sink.All())
		}
		var useA *typedast.FuncSig
		for _, fn := range out.Funcs["useA"] {
			useA = fn
		}
		body, ok := res.FuncBodies[useA]
		if !ok {
			t.Fatalf("useA's body did not elaborate")
		}
		call, ok := body.(*typedast.Call)
		if !ok {
			t.Fatalf("expected useA's body to elaborate to a Call, got %T", body)
		}
		if !call.Fun.Return.Equal(reltype.Make(mustSig(t, out, "A"))) {
			t.Errorf("expected the A-overload of p to be selected")
		}
	})

	t.Run("ambiguous", func(t *testing.T) {
		decls := append(base(),
			&ast.SigDecl{DeclPos: pos(5), Name: "AB", In: []string{"A", "B"}},
			&ast.FunDecl{DeclPos: pos(6), Name: "useAB", Params: []*ast.ParamDecl{
				{NamePos: pos(6), Names: []string{"a"}, Type: name("AB")},
			}, Body: &ast.CallExpr{ExprPos: pos(6), Fun: "p", Args: []ast.Expr{name("a")}}},
		)
		prog := &ast.Program{Decls: decls}
		_, _, sink := compile(t, prog)
		found := false
		for _, d := range sink.All() {
			if d.Kind == errs.Ambiguous {
				found = true
			}
		}
		if !found {
			t.Errorf("expected an Ambiguous diagnostic calling p[a] with a: A+B, got %v", sink.All())
		}
	})
}

func mustSig(t *testing.T, out *resolver.Output, n string) *reltype.PrimSig {
	t.Helper()
	s, ok := out.Graph.LookupPrimSig(n)
	if !ok {
		t.Fatalf("expected sig %q to be registered", n)
	}
	return s
}
