package reltype

import (
	"github.com/alloy-rel/core/internal/errs"
)

// errArityOverflow and errUnaryJoin return the two failure modes the type
// algebra itself can raise; the caller (the resolver or elaborator)
// attaches a real Pos before handing either to an errs.Sink.
func errArityOverflow(n int) error {
	return errs.New(errs.TypeArity, errs.NoPos, "relation of arity %d exceeds the maximum of %d", n, MaxArity)
}

func errUnaryJoin() error {
	return errs.New(errs.TypeArity, errs.NoPos, "cannot perform relational join between two unary sets")
}
