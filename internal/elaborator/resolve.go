package elaborator

import (
	"fmt"

	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
	"github.com/alloy-rel/core/internal/typedast"
)

// resolveNow disambiguates x against the constraint want (nil means "no
// constraint, just tie-break among the candidates"). A concrete (non-choice)
// node is returned unchanged once it passes the compatibility check; an
// *typedast.ExprChoice picks its best candidate using the same tie-break
// rule spec.md §4.G describes for the top-down pass: lowest ExtraWeight,
// then subsumption, otherwise Ambiguous. Unlike a single global top-down
// traversal, this is invoked at each operator/call-argument boundary as
// soon as that boundary's own constraint is known (see elaborator.go's
// package doc for why). A *typedast.ExprBadCall is never accepted: on its
// own it becomes a Type diagnostic, and inside a choice it is skipped.
func (e *elaborator) resolveNow(x typedast.Expr, want *reltype.Type, pos errs.Pos) (typedast.Expr, error) {
	choice, ok := x.(*typedast.ExprChoice)
	if !ok {
		if bc, isBad := x.(*typedast.ExprBadCall); isBad {
			e.sink.Addf(errs.Type, pos, "call to %q has missing or inapplicable arguments", bc.Fun.Name)
			return x, fmt.Errorf("incomplete call")
		}
		if !compatible(x.Type(), want) {
			e.sink.Addf(errs.Type, pos, "expression of type %v does not match the expected type %v", x.Type(), want)
			return x, fmt.Errorf("type mismatch")
		}
		return x, nil
	}

	switch choice.State() {
	case typedast.Selected:
		sel, _ := choice.Selected()
		return sel, nil
	case typedast.Failed:
		return choice, fmt.Errorf("already failed")
	}

	var compat []typedast.Expr
	for _, c := range choice.Candidates {
		if _, isBad := c.(*typedast.ExprBadCall); isBad {
			continue
		}
		if compatible(c.Type(), want) {
			compat = append(compat, c)
		}
	}
	if len(compat) == 0 {
		choice.Fail()
		e.sink.Addf(errs.Type, pos, "no candidate is compatible with the expected type %v", want)
		return choice, fmt.Errorf("no compatible candidate")
	}

	minWeight := compat[0].ExtraWeight()
	for _, c := range compat[1:] {
		if c.ExtraWeight() < minWeight {
			minWeight = c.ExtraWeight()
		}
	}
	var tied []typedast.Expr
	for _, c := range compat {
		if c.ExtraWeight() == minWeight {
			tied = append(tied, c)
		}
	}

	if len(tied) == 1 {
		choice.Select(tied[0])
		return tied[0], nil
	}

	chosen, ok := mostSpecific(tied)
	if !ok {
		choice.Fail()
		var descs []string
		for _, c := range tied {
			descs = append(descs, c.Type().String())
		}
		e.sink.Add(errs.New(errs.Ambiguous, pos, "expression is ambiguous among %d equally good candidates", len(tied)).WithCandidates(descs...))
		return choice, fmt.Errorf("ambiguous")
	}
	choice.Select(chosen)
	return chosen, nil
}

// compatible mirrors ExpDot.applicable's own per-argument check: arities
// must overlap, and if both sides actually carry tuples, those tuples must
// intersect. want == nil means "anything goes" (no enclosing constraint
// yet). Formulas are matched by identity/IsBool rather than this relational
// rule, since FORMULA carries no relational entries to compare.
func compatible(t, want *reltype.Type) bool {
	if want == nil {
		return true
	}
	if want == reltype.FORMULA {
		return t == reltype.FORMULA || t.IsBool()
	}
	return t.HasCommonArity(want) && !(t.HasTuple() && want.HasTuple() && !t.Intersects(want))
}

// subsumedBy reports whether every entry of a is already covered by b, i.e.
// merging a into b changes nothing: a is the same type as, or narrower
// than, b.
func subsumedBy(a, b *reltype.Type) bool {
	return a.Merge(b).Equal(b)
}

// mostSpecific returns the unique candidate whose Type is subsumed by every
// other candidate's Type (the "most specific match wins" tie-break rule),
// or ok=false if no such unique candidate exists.
func mostSpecific(candidates []typedast.Expr) (typedast.Expr, bool) {
	var best typedast.Expr
	count := 0
	for i, c := range candidates {
		isMinimal := true
		for j, other := range candidates {
			if i == j {
				continue
			}
			if !subsumedBy(c.Type(), other.Type()) {
				isMinimal = false
				break
			}
		}
		if isMinimal {
			best = c
			count++
		}
	}
	if count == 1 {
		return best, true
	}
	return nil, false
}
