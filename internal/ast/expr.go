package ast

import "github.com/alloy-rel/core/internal/errs"

// NameExpr is a bare identifier reference; which sig, field, parameter, or
// function it denotes is not known until elaboration sees every in-scope
// binding with that name (spec.md §4.G, "Name reference").
type NameExpr struct {
	ExprPos errs.Pos
	Name    string
}

func (e *NameExpr) Pos() errs.Pos { return e.ExprPos }
func (*NameExpr) node()           {}
func (*NameExpr) expr()           {}

// IntExpr is an integer literal. Range-checked against a 32-bit signed
// bound during elaboration (spec.md §6), not here.
type IntExpr struct {
	ExprPos errs.Pos
	Value   int64
}

func (e *IntExpr) Pos() errs.Pos { return e.ExprPos }
func (*IntExpr) node()           {}
func (*IntExpr) expr()           {}

// UnaryExpr applies a prefix operator to a single operand: ~r, ^r, *r, #r,
// !p, or a multiplicity test (no/some/one/lone E).
type UnaryExpr struct {
	ExprPos errs.Pos
	Op      UnaryOp
	X       Expr
}

func (e *UnaryExpr) Pos() errs.Pos { return e.ExprPos }
func (*UnaryExpr) node()           {}
func (*UnaryExpr) expr()           {}

// BinaryExpr applies an infix operator over two operands.
type BinaryExpr struct {
	ExprPos errs.Pos
	Op      BinaryOp
	X, Y    Expr
}

func (e *BinaryExpr) Pos() errs.Pos { return e.ExprPos }
func (*BinaryExpr) node()           {}
func (*BinaryExpr) expr()           {}

// QuantExpr binds one or more variables over declared-type expressions and
// evaluates Body in that scope: all x: E | F, some x, y: E | F, sum x: E | I.
type QuantExpr struct {
	ExprPos errs.Pos
	Op      QuantOp
	Vars    []*ParamDecl
	Body    Expr
}

func (e *QuantExpr) Pos() errs.Pos { return e.ExprPos }
func (*QuantExpr) node()           {}
func (*QuantExpr) expr()           {}

// LetExpr binds Name to Value for the scope of Body: let x = E | F.
type LetExpr struct {
	ExprPos errs.Pos
	Name    string
	Value   Expr
	Body    Expr
}

func (e *LetExpr) Pos() errs.Pos { return e.ExprPos }
func (*LetExpr) node()           {}
func (*LetExpr) expr()           {}

// CallExpr applies a named function or predicate to an argument list:
// f[a, b]. Which declaration of f is meant, and whether the call is fully
// or only partially applied, is resolved during elaboration.
type CallExpr struct {
	ExprPos errs.Pos
	Fun     string
	Args    []Expr
}

func (e *CallExpr) Pos() errs.Pos { return e.ExprPos }
func (*CallExpr) node()           {}
func (*CallExpr) expr()           {}

// ITEExpr is the if/then/else ternary over formulas or relations:
// Cond => Then else Else.
type ITEExpr struct {
	ExprPos          errs.Pos
	Cond, Then, Else Expr
}

func (e *ITEExpr) Pos() errs.Pos { return e.ExprPos }
func (*ITEExpr) node()           {}
func (*ITEExpr) expr()           {}

// DotExpr is Alloy's overloaded dot: L.R, elaborated as either a relational
// join or a (possibly partial) function call depending on what L and R
// resolve to (spec.md §4.G, "Dot expression").
type DotExpr struct {
	ExprPos errs.Pos
	Left    Expr
	Right   Expr
}

func (e *DotExpr) Pos() errs.Pos { return e.ExprPos }
func (*DotExpr) node()           {}
func (*DotExpr) expr()           {}
