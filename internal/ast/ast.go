// Package ast defines the untyped parse tree handed to this module by an
// external parser (lexing and concrete-syntax parsing are out of scope,
// per spec §1). Every node is a closed variant reachable by a type switch;
// there is no Visitor/Accept dispatch — a single untyped node kind is added
// or removed in one place, the switch, rather than touched across every
// visitor implementation.
package ast

import "github.com/alloy-rel/core/internal/errs"

// Node is the root of every untyped tree node. node() is unexported so no
// type outside this package can implement Node by accident.
type Node interface {
	Pos() errs.Pos
	node()
}

// Decl is a top-level or sig-body declaration.
type Decl interface {
	Node
	decl()
}

// Expr is an untyped expression, produced directly by the parser with no
// Type attached yet — that happens during elaboration (internal/typedast).
type Expr interface {
	Node
	expr()
}

// Program is the root of one compilation unit: an ordered list of
// declarations, matching the external interface in spec.md §6.
type Program struct {
	File  string
	Decls []Decl
}
