package ast

import "github.com/alloy-rel/core/internal/errs"

// ParamDecl names one or more parameters sharing a declared type expression,
// used by FunDecl/PredDecl parameter lists and by QuantExpr bound variables.
// sig Foo { f, g: E } and fun bar[x, y: E] both share this shape.
type ParamDecl struct {
	NamePos errs.Pos
	Names   []string
	Mult    Mult
	Type    Expr
}

func (p *ParamDecl) Pos() errs.Pos { return p.NamePos }

// SigDecl declares a signature, its hierarchy placement, and its fields.
// sig Name extends Parent {} | sig Name in P1 + P2 {}
type SigDecl struct {
	DeclPos  errs.Pos
	Name     string
	Abstract bool
	Mult     Mult
	Extends  string   // name of parent sig; empty if absent
	In       []string // union-of-parents names; mutually exclusive with Extends
	Aliases  []string // additional names this sig may be looked up under, e.g. a multi-module ParaSig merge
	Fields   []*FieldDecl
}

func (d *SigDecl) Pos() errs.Pos { return d.DeclPos }
func (*SigDecl) node()           {}
func (*SigDecl) decl()           {}

// FieldDecl declares one or more same-typed fields inside a sig body.
// f, g : E  or  f : lone E
type FieldDecl struct {
	DeclPos errs.Pos
	Names   []string
	Mult    Mult
	Type    Expr
}

func (d *FieldDecl) Pos() errs.Pos { return d.DeclPos }
func (*FieldDecl) node()           {}
func (*FieldDecl) decl()           {}

// FunDecl declares a relation-valued function.
// fun Name[params] : Return { Body }
type FunDecl struct {
	DeclPos errs.Pos
	Name    string
	Params  []*ParamDecl
	Return  Expr // nil if the function's return type is inferred from Body
	Body    Expr
}

func (d *FunDecl) Pos() errs.Pos { return d.DeclPos }
func (*FunDecl) node()           {}
func (*FunDecl) decl()           {}

// PredDecl declares a formula-valued predicate; its Type is always FORMULA.
// pred Name[params] { Body }
type PredDecl struct {
	DeclPos errs.Pos
	Name    string
	Params  []*ParamDecl
	Body    Expr
}

func (d *PredDecl) Pos() errs.Pos { return d.DeclPos }
func (*PredDecl) node()           {}
func (*PredDecl) decl()           {}

// FactDecl declares a named axiom, always elaborated against FORMULA.
// fact Name { Body }
type FactDecl struct {
	DeclPos errs.Pos
	Name    string
	Body    Expr
}

func (d *FactDecl) Pos() errs.Pos { return d.DeclPos }
func (*FactDecl) node()           {}
func (*FactDecl) decl()           {}

// AssertDecl declares a named claim to be checked, always against FORMULA.
// assert Name { Body }
type AssertDecl struct {
	DeclPos errs.Pos
	Name    string
	Body    Expr
}

func (d *AssertDecl) Pos() errs.Pos { return d.DeclPos }
func (*AssertDecl) node()           {}
func (*AssertDecl) decl()           {}

// ScopeDecl bounds the cardinality of one sig within a command's scope.
// 3 Sig  or  exactly 2 Sig
type ScopeDecl struct {
	DeclPos errs.Pos
	Sig     string
	Count   int
	Exact   bool
}

func (d *ScopeDecl) Pos() errs.Pos { return d.DeclPos }

// CommandDecl declares a run or check command over a predicate or assertion.
// run Name for 3  |  check Name for 5 but 2 Sig expect 0
type CommandDecl struct {
	DeclPos   errs.Pos
	Name      string // generated name if the command is anonymous
	Kind      CommandKind
	Target    string // name of the pred or assert being run/checked
	Scopes    []*ScopeDecl
	Bitwidth  int // 0 means "unspecified, use default"
	HasExpect bool
	Expect    int // 0 or 1, only meaningful when HasExpect
}

func (d *CommandDecl) Pos() errs.Pos { return d.DeclPos }
func (*CommandDecl) node()          {}
func (*CommandDecl) decl()          {}
