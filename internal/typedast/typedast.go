// Package typedast is the output of elaboration: a fully typed expression
// tree built bottom-up by internal/elaborator from internal/ast's untyped
// nodes. As with internal/ast, node kinds are a closed set dispatched by a
// type switch rather than a Visitor; unlike internal/ast, every node here
// also carries a resolved *reltype.Type and is immutable once constructed
// (rewrites build new trees rather than mutating in place).
package typedast

import (
	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
)

// Expr is any node in the typed tree, including the transient ExprChoice
// and ExprBadCall nodes the elaborator uses during disambiguation. Once a
// Module is frozen, no surviving Expr is an ExprChoice or ExprBadCall.
type Expr interface {
	Pos() errs.Pos
	Type() *reltype.Type
	// ExtraWeight contributes to top-down tie-breaking: zero for a direct
	// match, positive for an elaborator-synthesized coercion such as
	// Cast2SigInt (spec.md §4.G, tie-break rule 1).
	ExtraWeight() int
	// Synthesized reports whether the elaborator introduced this node
	// (e.g. a cast) rather than it coming directly from a parsed operator.
	Synthesized() bool
	expr()
}

// base is embedded by every concrete Expr to avoid repeating the same four
// accessor bodies on every variant.
type base struct {
	pos         errs.Pos
	typ         *reltype.Type
	extraWeight int
	synthesized bool
}

func (b *base) Pos() errs.Pos        { return b.pos }
func (b *base) Type() *reltype.Type  { return b.typ }
func (b *base) ExtraWeight() int     { return b.extraWeight }
func (b *base) Synthesized() bool    { return b.synthesized }
func (*base) expr()                  {}

// VarDecl is a bound variable introduced by a quantifier, a let, or a
// function/predicate parameter list. Resolver builds these for parameters;
// Elaborator builds them for quant/let bindings.
type VarDecl struct {
	NamePos errs.Pos
	Name    string
	Typ     *reltype.Type
}

func (v *VarDecl) Pos() errs.Pos       { return v.NamePos }
func (v *VarDecl) Type() *reltype.Type { return v.Typ }

// FuncSig is a resolved function or predicate signature: the product of
// Resolver pass 1, consumed by Elaborator pass 2 when checking calls.
// Predicates are represented with Return == reltype.FORMULA.
type FuncSig struct {
	Name    string
	Params  []*VarDecl
	Return  *reltype.Type
	IsPred  bool
	DeclPos errs.Pos
}

// SigRef is a reference to a resolved signature (a name that turned out to
// denote a sig, not a field or a variable).
type SigRef struct {
	base
	Sig *reltype.PrimSig
}

func NewSigRef(pos errs.Pos, sig *reltype.PrimSig) *SigRef {
	return &SigRef{base: base{pos: pos, typ: reltype.Make(sig)}, Sig: sig}
}

// SubsetRef is a reference to a resolved subset signature (a name that
// turned out to denote an "in A + B" sig rather than a toplevel one). Kept
// distinct from SigRef since a SubsetSig has no single *reltype.PrimSig to
// point at, only the union Type of its parents.
type SubsetRef struct {
	base
	Sig *reltype.SubsetSig
}

func NewSubsetRef(pos errs.Pos, sig *reltype.SubsetSig) *SubsetRef {
	return &SubsetRef{base: base{pos: pos, typ: sig.Type()}, Sig: sig}
}

// FieldRef is a reference to a resolved field.
type FieldRef struct {
	base
	Field *reltype.Field
}

func NewFieldRef(pos errs.Pos, field *reltype.Field) *FieldRef {
	return &FieldRef{base: base{pos: pos, typ: field.Type}, Field: field}
}

// VarRef is a reference to an in-scope bound variable (quant/let/param).
type VarRef struct {
	base
	Decl *VarDecl
}

func NewVarRef(pos errs.Pos, decl *VarDecl) *VarRef {
	return &VarRef{base: base{pos: pos, typ: decl.Typ}, Decl: decl}
}

// IntLit is an integer literal, always typed INT.
type IntLit struct {
	base
	Value int64
}

func NewIntLit(pos errs.Pos, value int64) *IntLit {
	return &IntLit{base: base{pos: pos, typ: reltype.INT}, Value: value}
}

// Unary applies a prefix operator to X.
type Unary struct {
	base
	Op ast.UnaryOp
	X  Expr
}

func NewUnary(pos errs.Pos, op ast.UnaryOp, x Expr, typ *reltype.Type) *Unary {
	return &Unary{base: base{pos: pos, typ: typ}, Op: op, X: x}
}

// Binary applies an infix operator to X and Y.
type Binary struct {
	base
	Op   ast.BinaryOp
	X, Y Expr
}

func NewBinary(pos errs.Pos, op ast.BinaryOp, x, y Expr, typ *reltype.Type) *Binary {
	return &Binary{base: base{pos: pos, typ: typ}, Op: op, X: x, Y: y}
}

// Quant is a quantified expression with its bound variables resolved. Typ
// is reltype.FORMULA for all/some/no/one/lone, and reltype.INT for a "sum"
// aggregation (spec.md's quantifier table).
type Quant struct {
	base
	Op   ast.QuantOp
	Vars []*VarDecl
	Body Expr
}

func NewQuant(pos errs.Pos, op ast.QuantOp, vars []*VarDecl, body Expr, typ *reltype.Type) *Quant {
	return &Quant{base: base{pos: pos, typ: typ}, Op: op, Vars: vars, Body: body}
}

// Let binds Var to Value for the scope of Body.
type Let struct {
	base
	Var   *VarDecl
	Value Expr
	Body  Expr
}

func NewLet(pos errs.Pos, v *VarDecl, value, body Expr) *Let {
	return &Let{base: base{pos: pos, typ: body.Type()}, Var: v, Value: value, Body: body}
}

// Call is a fully-applied function or predicate call.
type Call struct {
	base
	Fun  *FuncSig
	Args []Expr
}

func NewCall(pos errs.Pos, fun *FuncSig, args []Expr, extraWeight int) *Call {
	return &Call{base: base{pos: pos, typ: fun.Return, extraWeight: extraWeight}, Fun: fun, Args: args}
}

// ITE is the if/then/else ternary.
type ITE struct {
	base
	Cond, Then, Else Expr
}

func NewITE(pos errs.Pos, cond, then, els Expr, typ *reltype.Type) *ITE {
	return &ITE{base: base{pos: pos, typ: typ}, Cond: cond, Then: then, Else: els}
}

// Cast2SigInt is the "A.Int" coercion ExpDot.check performs when the left
// side of a dot is integer-typed and the right side is the SIGINT builtin
// (see SUPPLEMENTED FEATURES). It always carries a nonzero ExtraWeight so a
// direct, non-coerced match out-competes it during top-down tie-breaking.
type Cast2SigInt struct {
	base
	X Expr
}

func NewCast2SigInt(pos errs.Pos, x Expr) *Cast2SigInt {
	return &Cast2SigInt{base: base{pos: pos, typ: reltype.INT, extraWeight: 1, synthesized: true}, X: x}
}

// ExprBadCall is a partial application of Fun: fewer arguments have been
// supplied than Fun.Params requires. It is not itself well-typed; the
// elaborator either extends its argument list into a Call as more dot
// segments are processed, or it survives to the end of elaboration as a
// Type diagnostic (spec.md §4.G; SUPPLEMENTED FEATURES #3).
type ExprBadCall struct {
	base
	Fun  *FuncSig
	Args []Expr
}

func NewExprBadCall(pos errs.Pos, fun *FuncSig, args []Expr, extraWeight int) *ExprBadCall {
	return &ExprBadCall{base: base{pos: pos, typ: reltype.EMPTY, extraWeight: extraWeight}, Fun: fun, Args: args}
}

// ChoiceState is the lifecycle of an ExprChoice node (spec.md §4.G).
type ChoiceState int

const (
	// Open: candidates still present, no top-down visit has selected one.
	Open ChoiceState = iota
	// Selected: the top-down pass chose exactly one candidate.
	Selected
	// Failed: no candidate was compatible with the enclosing constraint.
	Failed
)

func (s ChoiceState) String() string {
	switch s {
	case Open:
		return "open"
	case Selected:
		return "selected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExprChoice is the transient disambiguation-set node the bottom-up pass
// produces for an overloaded untyped expression. It is never part of a
// frozen Module: the top-down pass replaces it with its Selected candidate,
// or the declaration is dropped with a diagnostic if it ends Failed.
type ExprChoice struct {
	choicePos  errs.Pos
	Candidates []Expr
	state      ChoiceState
	selected   Expr
}

func NewExprChoice(pos errs.Pos, candidates []Expr) *ExprChoice {
	return &ExprChoice{choicePos: pos, Candidates: candidates, state: Open}
}

func (c *ExprChoice) Pos() errs.Pos { return c.choicePos }

// Type returns the selected candidate's Type once Selected, or EMPTY
// otherwise; callers should check State before relying on it.
func (c *ExprChoice) Type() *reltype.Type {
	if c.state == Selected {
		return c.selected.Type()
	}
	return reltype.EMPTY
}

func (c *ExprChoice) ExtraWeight() int {
	if c.state == Selected {
		return c.selected.ExtraWeight()
	}
	return 0
}

func (c *ExprChoice) Synthesized() bool { return false }
func (*ExprChoice) expr()               {}

// State reports the current lifecycle stage.
func (c *ExprChoice) State() ChoiceState { return c.state }

// Selected returns the chosen candidate and true once State is Selected.
func (c *ExprChoice) Selected() (Expr, bool) {
	if c.state == Selected {
		return c.selected, true
	}
	return nil, false
}

// Select marks this node Selected with candidate c. Selecting the same
// candidate twice is idempotent (spec.md §4.G); selecting a different one
// after Failed or after a different Selected candidate is a programmer
// error, since top-down resolution visits a node at most once in practice.
func (c *ExprChoice) Select(candidate Expr) {
	if c.state == Selected && c.selected == candidate {
		return
	}
	c.state = Selected
	c.selected = candidate
}

// Fail marks this node Failed: no candidate survived top-down resolution.
func (c *ExprChoice) Fail() {
	c.state = Failed
}
