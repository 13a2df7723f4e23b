// Package errs implements the ErrorModel: a taxonomy of analysis failures
// carrying source positions, and a per-declaration accumulator used by the
// Resolver and Elaborator to recover from one bad declaration without
// poisoning the rest of the module.
package errs

import "fmt"

// Pos identifies a location in the original source, as handed to us by the
// external parser (lexing/parsing is out of scope for this module).
type Pos struct {
	File   string
	Line   int
	Column int
}

// NoPos is used for synthesized nodes that have no direct source location.
var NoPos = Pos{}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 && p.Column == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsKnown reports whether p carries real source information.
func (p Pos) IsKnown() bool { return p != NoPos }
