package reltype

import (
	"context"
	"strings"

	"github.com/alloy-rel/core/internal/errs"
)

// MaxArity is the hard ceiling on relation arity: arities are tracked as
// bits of a 32-bit word, so this can never exceed 30. A session's
// config.Options.MaxArity may lower this further but never raise it.
const MaxArity = 30

// Type is the canonical set of ProductType entries (plus the is_int/is_bool
// flags for the two primitive value kinds) that describes every value an
// expression might evaluate to. Immutable: every operation below returns a
// new Type rather than mutating the receiver. Grounded on Type.java.
type Type struct {
	isInt   bool
	isBool  bool
	entries []ProductType
	arities uint32
}

// The four constant Types with no relational entries.
var (
	EMPTY         = &Type{}
	INT           = &Type{isInt: true}
	FORMULA       = &Type{isBool: true}
	INTANDFORMULA = &Type{isInt: true, isBool: true}
)

// normalize is the single factory every operator below funnels through,
// collapsing to one of the four constants whenever the entry set is empty.
func normalize(isInt, isBool bool, entries []ProductType, arities uint32) *Type {
	if len(entries) == 0 || arities == 0 {
		switch {
		case isInt && isBool:
			return INTANDFORMULA
		case isInt:
			return INT
		case isBool:
			return FORMULA
		default:
			return EMPTY
		}
	}
	return &Type{isInt: isInt, isBool: isBool, entries: entries, arities: arities}
}

// insert is the chokepoint for merging a ProductType into a working entry
// list: if x is subsumed by an existing same-arity entry it is dropped, and
// any existing entry subsumed by x is dropped in turn. Mirrors Type.java's
// package-private "add" index-for-index, including the order-dependent
// behavior when three or more same-arity entries interact during one call.
func insert(entries []ProductType, arities uint32, x *ProductType) ([]ProductType, uint32) {
	if x == nil {
		return entries, arities
	}
	arity := x.Arity()
	n := len(entries)
	for i := n - 1; i >= 0; i-- {
		y := entries[i]
		if y.Arity() != arity {
			continue
		}
		if x.isSubtypeOf(y) {
			return entries, arities
		}
		if y.isSubtypeOf(*x) {
			n--
			entries[i] = entries[n]
			entries = entries[:n]
		}
	}
	arities |= uint32(1) << uint(arity)
	entries = append(entries, *x)
	return entries, arities
}

func makeFromProduct(p ProductType) *Type {
	return normalize(false, false, []ProductType{p}, uint32(1)<<uint(p.Arity()))
}

// Make returns the singleton type of one PrimSig: { s }.
func Make(s *PrimSig) *Type {
	return makeFromProduct(unary(s))
}

// Make2 returns the type { s->s }, used for the declared type of a field
// whose column entries are not yet known (e.g. while resolving cycles).
func Make2(s *PrimSig) *Type {
	return makeFromProduct(repeated(2, s))
}

// MakeFromSigs builds the type sigs[0]->sigs[1]->..->sigs[n-1]. If any
// element is NONE, every column collapses to NONE (the whole tuple is
// empty).
func MakeFromSigs(sigs []*PrimSig) (*Type, error) {
	if len(sigs) == 0 {
		return nil, errs.New(errs.Fatal, errs.NoPos, "relation arity cannot be zero")
	}
	if len(sigs) > MaxArity {
		return nil, errArityOverflow(len(sigs))
	}
	list := make([]*PrimSig, len(sigs))
	copy(list, sigs)
	for _, s := range list {
		if s.IsNone() {
			for j := range list {
				list[j] = s
			}
			break
		}
	}
	return makeFromProduct(NewProductType(list)), nil
}

// WithInt returns a Type identical to t but with is_int set.
func (t *Type) WithInt() *Type {
	if t.isInt {
		return t
	}
	return normalize(true, t.isBool, t.entries, t.arities)
}

// WithBool returns a Type identical to t but with is_bool set.
func (t *Type) WithBool() *Type {
	if t.isBool {
		return t
	}
	return normalize(t.isInt, true, t.entries, t.arities)
}

// WithoutIntAndBool strips the is_int/is_bool flags, used when a formula or
// integer literal is embedded in a context expecting only relational value.
func (t *Type) WithoutIntAndBool() *Type {
	if !t.isBool && !t.isInt {
		return t
	}
	return normalize(false, false, t.entries, t.arities)
}

// IsInt and IsBool report the two primitive-value flags.
func (t *Type) IsInt() bool  { return t.isInt }
func (t *Type) IsBool() bool { return t.isBool }

// Entries returns the ProductType entries in this type, in internal order.
func (t *Type) Entries() []ProductType { return t.entries }

// Equal reports whether (t subsumes that) and (that subsumes t): two Types
// are equal iff every entry of one has a same-arity entry of the other
// that it is a subtype of, and vice versa.
func (t *Type) Equal(that *Type) bool {
	if t == that {
		return true
	}
	if t.arities != that.arities || t.isInt != that.isInt || t.isBool != that.isBool {
		return false
	}
outer1:
	for _, a := range t.entries {
		for _, b := range that.entries {
			if a.Arity() == b.Arity() && a.isSubtypeOf(b) {
				continue outer1
			}
		}
		return false
	}
outer2:
	for _, b := range that.entries {
		for _, a := range t.entries {
			if a.Arity() == b.Arity() && b.isSubtypeOf(a) {
				continue outer2
			}
		}
		return false
	}
	return true
}

// HasNoTuple reports whether t is empty or every entry is NONE->..->NONE.
func (t *Type) HasNoTuple() bool {
	for _, e := range t.entries {
		if !e.IsEmpty() {
			return false
		}
	}
	return true
}

// HasTuple reports whether t has at least one non-empty entry.
func (t *Type) HasTuple() bool {
	for _, e := range t.entries {
		if !e.IsEmpty() {
			return true
		}
	}
	return false
}

// Size returns the number of ProductType entries.
func (t *Type) Size() int { return len(t.entries) }

// HasArity reports whether t contains an entry of the given arity.
func (t *Type) HasArity(arity int) bool {
	return arity > 0 && arity <= MaxArity && (t.arities&(uint32(1)<<uint(arity))) != 0
}

// Arity returns the common arity of every entry, -1 if entries have mixed
// arities, or 0 if t has no entries at all.
func (t *Type) Arity() int {
	if t.arities == 0 {
		return 0
	}
	ans := 0
	for i := 1; i <= MaxArity; i++ {
		if t.arities&(uint32(1)<<uint(i)) != 0 {
			if ans == 0 {
				ans = i
			} else {
				return -1
			}
		}
	}
	return ans
}

// FirstColumnOverlaps reports whether some entry of t and some entry of
// that share a nonempty first column, ignoring arity and the is_int/is_bool
// flags.
func (t *Type) FirstColumnOverlaps(that *Type) bool {
	for _, a := range t.entries {
		for _, b := range that.entries {
			if a.At(0).Intersects(b.At(0)) {
				return true
			}
		}
	}
	return false
}

// CanOverride reports whether some entry of t and some same-arity entry of
// that share a nonempty first column.
func (t *Type) CanOverride(that *Type) bool {
	if t.arities&that.arities == 0 {
		return false
	}
	for _, a := range t.entries {
		if that.arities&(uint32(1)<<uint(a.Arity())) == 0 {
			continue
		}
		for _, b := range that.entries {
			if a.Arity() == b.Arity() && a.At(0).Intersects(b.At(0)) {
				return true
			}
		}
	}
	return false
}

// HasCommonArity reports whether t and that share any arity.
func (t *Type) HasCommonArity(that *Type) bool {
	return t.arities&that.arities != 0
}

// Product returns { A->B | A is in t, B is in that }.
func (t *Type) Product(that *Type) (*Type, error) {
	var entries []ProductType
	var arities uint32
	for _, a := range t.entries {
		for _, b := range that.entries {
			x, err := a.product(b)
			if err != nil {
				return nil, err
			}
			entries, arities = insert(entries, arities, &x)
		}
	}
	return normalize(false, false, entries, arities), nil
}

// Intersects reports whether { A&B | A in t, B in that } can have tuples.
func (t *Type) Intersects(that *Type) bool {
	if t.arities&that.arities == 0 {
		return false
	}
	for _, a := range t.entries {
		if a.IsEmpty() || that.arities&(uint32(1)<<uint(a.Arity())) == 0 {
			continue
		}
		for _, b := range that.entries {
			if !b.IsEmpty() && a.Arity() == b.Arity() && a.intersects(b) {
				return true
			}
		}
	}
	return false
}

// Intersect returns { A&B | A in t, B in that }.
func (t *Type) Intersect(that *Type) *Type {
	if t.arities&that.arities == 0 {
		return EMPTY
	}
	var entries []ProductType
	var arities uint32
	for _, a := range t.entries {
		if that.arities&(uint32(1)<<uint(a.Arity())) == 0 {
			continue
		}
		for _, b := range that.entries {
			if a.Arity() == b.Arity() {
				x := a.intersect(b)
				entries, arities = insert(entries, arities, &x)
			}
		}
	}
	return normalize(false, false, entries, arities)
}

// IntersectProduct returns { A&that | A in t }.
func (t *Type) IntersectProduct(that ProductType) *Type {
	if t.arities&(uint32(1)<<uint(that.Arity())) == 0 {
		return EMPTY
	}
	var entries []ProductType
	var arities uint32
	for _, a := range t.entries {
		if a.Arity() == that.Arity() {
			x := a.intersect(that)
			entries, arities = insert(entries, arities, &x)
		}
	}
	return normalize(false, false, entries, arities)
}

// Merge returns { A | A in t, or A in that }. A nil that is a no-op, so
// merge can be chained over an optional companion type.
func (t *Type) Merge(that *Type) *Type {
	if that == nil {
		return t
	}
	if len(that.entries) == 0 && t.isInt == that.isInt && t.isBool == that.isBool {
		return t
	}
	entries := append([]ProductType{}, t.entries...)
	arities := t.arities
	for _, x := range that.entries {
		y := x
		entries, arities = insert(entries, arities, &y)
	}
	return normalize(t.isInt || that.isInt, t.isBool || that.isBool, entries, arities)
}

// MergeProduct returns { A | A in t, or A == that }.
func (t *Type) MergeProduct(that ProductType) *Type {
	entries := append([]ProductType{}, t.entries...)
	entries, arities := insert(entries, t.arities, &that)
	return normalize(t.isInt, t.isBool, entries, arities)
}

// MergeSigs returns { A | A in t, or A == sigs[0]->..->sigs[n-1] }.
func (t *Type) MergeSigs(sigs []*PrimSig) (*Type, error) {
	if len(sigs) == 0 {
		return nil, errs.New(errs.Fatal, errs.NoPos, "relation arity cannot be zero")
	}
	if len(sigs) > MaxArity {
		return nil, errArityOverflow(len(sigs))
	}
	array := make([]*PrimSig, len(sigs))
	copy(array, sigs)
	for _, s := range array {
		if s.IsNone() {
			if t.arities&(uint32(1)<<uint(len(array))) != 0 {
				return t, nil
			}
			for j := range array {
				array[j] = s
			}
			break
		}
	}
	entries := append([]ProductType{}, t.entries...)
	pt := NewProductType(array)
	entries, arities := insert(entries, t.arities, &pt)
	return normalize(t.isInt, t.isBool, entries, arities), nil
}

// UnionWithCommonArity returns { A | (A in t and A.arity in that) or
// (A in that and A.arity in t) }.
func (t *Type) UnionWithCommonArity(that *Type) *Type {
	if t.arities&that.arities == 0 {
		return EMPTY
	}
	var entries []ProductType
	var arities uint32
	if len(t.entries) > 0 && len(that.entries) > 0 {
		for _, x := range t.entries {
			ar := uint32(1) << uint(x.Arity())
			if that.arities&ar != 0 {
				arities |= ar
				entries = append(entries, x)
			}
		}
		for _, x := range that.entries {
			ar := uint32(1) << uint(x.Arity())
			if t.arities&ar != 0 {
				y := x
				entries, arities = insert(entries, arities, &y)
			}
		}
	}
	return normalize(false, false, entries, arities)
}

// PickCommonArity returns { A | A in t and A.arity in that }.
func (t *Type) PickCommonArity(that *Type) *Type {
	if !t.isInt && !t.isBool && (t.arities&that.arities) == t.arities {
		return t
	}
	var entries []ProductType
	var arities uint32
	for _, x := range t.entries {
		ar := uint32(1) << uint(x.Arity())
		if that.arities&ar != 0 {
			arities |= ar
			entries = append(entries, x)
		}
	}
	return normalize(false, false, entries, arities)
}

// Transpose returns { A | A is binary and ~A is in t }.
func (t *Type) Transpose() *Type {
	if t.arities&(uint32(1)<<2) == 0 {
		return EMPTY
	}
	var entries []ProductType
	var arities uint32
	for _, a := range t.entries {
		if a.Arity() == 2 {
			x := a.transpose()
			entries, arities = insert(entries, arities, &x)
		}
	}
	return normalize(false, false, entries, arities)
}

// Join returns { A.B | A in t, B in that, A.arity+B.arity > 2 }.
func (t *Type) Join(that *Type) (*Type, error) {
	if len(t.entries) == 0 || len(that.entries) == 0 {
		return EMPTY, nil
	}
	var entries []ProductType
	var arities uint32
	for _, a := range t.entries {
		for _, b := range that.entries {
			if a.Arity()+b.Arity() > 2 {
				x, err := a.join(b)
				if err != nil {
					return nil, err
				}
				entries, arities = insert(entries, arities, &x)
			}
		}
	}
	return normalize(false, false, entries, arities), nil
}

// DomainRestrict returns { R | exists n-ary A in t, exists unary B in
// that, R equals A except R[0] = A[0] & B }.
func (t *Type) DomainRestrict(that *Type) *Type {
	var entries []ProductType
	var arities uint32
	if len(t.entries) > 0 && that.arities&(uint32(1)<<1) != 0 {
		for _, b := range that.entries {
			if b.Arity() != 1 {
				continue
			}
			for _, a := range t.entries {
				x := a.columnRestrict(b.At(0), 0)
				entries, arities = insert(entries, arities, &x)
			}
		}
	}
	return normalize(false, false, entries, arities)
}

// RangeRestrict returns { R | exists n-ary A in t, exists unary B in that,
// R equals A except R[n-1] = A[n-1] & B }.
func (t *Type) RangeRestrict(that *Type) *Type {
	var entries []ProductType
	var arities uint32
	if len(t.entries) > 0 && that.arities&(uint32(1)<<1) != 0 {
		for _, b := range that.entries {
			if b.Arity() != 1 {
				continue
			}
			for _, a := range t.entries {
				x := a.columnRestrict(b.At(0), a.Arity()-1)
				entries, arities = insert(entries, arities, &x)
			}
		}
	}
	return normalize(false, false, entries, arities)
}

// Extract returns { A | A in t and A.arity == arity }.
func (t *Type) Extract(arity int) *Type {
	aa := uint32(1) << uint(arity)
	if arity <= 0 || arity > MaxArity || t.arities&aa == 0 {
		return EMPTY
	}
	if !t.isBool && !t.isInt && t.arities == aa {
		return t
	}
	var entries []ProductType
	for _, x := range t.entries {
		if x.Arity() == arity {
			entries = append(entries, x)
		}
	}
	return normalize(false, false, entries, aa)
}

// isArityOverflow reports whether err is the "arity too large" diagnostic
// this package raises; a closure's binary-only joins can never actually
// trigger it, matching Type.java's "this is impossible, but we catch it
// anyway" comment on its own closure() method.
func isArityOverflow(err error) bool {
	d, ok := err.(*errs.Diagnostic)
	return ok && d.Kind == errs.TypeArity
}

// Closure returns u + u.u + u.u.u + ... where u is the set of binary
// entries in t, computed as an iterative fixed point. ctx is checked for
// cancellation once before any work and then every checkEvery iterations
// (spec's cooperative cancellation model); a cancelled context yields an
// errs.Cancelled diagnostic rather than a partial result.
func (t *Type) Closure(ctx context.Context, checkEvery int) (*Type, error) {
	if checkEvery < 1 {
		checkEvery = 1
	}
	select {
	case <-ctx.Done():
		return nil, errs.New(errs.Cancelled, errs.NoPos, "closure computation cancelled: %v", ctx.Err())
	default:
	}
	ans := t.Extract(2)
	u := ans
	uu, err := u.Join(u)
	if err != nil {
		if isArityOverflow(err) {
			return t.Extract(2), nil
		}
		return nil, err
	}
	for iteration := 0; uu.HasTuple(); iteration++ {
		if iteration%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return nil, errs.New(errs.Cancelled, errs.NoPos, "closure computation cancelled: %v", ctx.Err())
			default:
			}
		}
		oldAns, oldUU := ans, uu
		ans = ans.UnionWithCommonArity(uu)
		uu, err = uu.Join(u)
		if err != nil {
			if isArityOverflow(err) {
				return t.Extract(2), nil
			}
			return nil, err
		}
		if oldAns.Equal(ans) && oldUU.Equal(uu) {
			break
		}
	}
	return ans, nil
}

func removeSig(list []*PrimSig, s *PrimSig) []*PrimSig {
	for i, x := range list {
		if x == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// fold merges a into the working entry list e if {a}+e contains a set of
// tuples differing only in column i that together exhaust every direct
// child of a[i]'s abstract parent. Returns the folded tuple (same length,
// column i replaced by the parent), or nil if no merge applies.
// Precondition: a[i] != NONE and a[i].Parent is abstract and != UNIV.
func fold(e *[][]*PrimSig, a []*PrimSig, i int) []*PrimSig {
	parent := a[i].Parent
	subs := append([]*PrimSig{}, parent.Children()...)
	es := *e
	var toRemove []int
	for bi := len(es) - 1; bi >= 0; bi-- {
		b := es[bi]
		if len(b) != len(a) {
			continue
		}
		matched := true
		for j := 0; j < len(b); j++ {
			if i == j {
				if b[j].Parent != parent {
					matched = false
					break
				}
			} else if b[j] != a[j] {
				matched = false
				break
			}
		}
		if matched {
			toRemove = append(toRemove, bi)
			subs = removeSig(subs, b[i])
		}
	}
	subs = removeSig(subs, a[i])
	if len(subs) != 0 {
		return nil
	}
	for _, bi := range toRemove {
		es = append(es[:bi], es[bi+1:]...)
	}
	*e = es
	folded := append([]*PrimSig{}, a...)
	folded[i] = parent
	return folded
}

// Fold returns t's entries with every abstract-sig partition collapsed:
// whenever a set of relations are identical except for one column, and
// together exhaust all direct subsigs of an abstract sig in that column,
// they are merged into a single tuple using the abstract parent. Cosmetic
// only - used for String() and diagnostic rendering - never for type
// computation, so it is current only with respect to the sig graph at the
// time it is called.
func (t *Type) Fold() [][]*PrimSig {
	var e [][]*PrimSig
	for _, xx := range t.entries {
		x := append([]*PrimSig{}, xx.sigs...)
		for {
			n := len(x)
			changed := false
			for i := 0; i < n; i++ {
				bt := x[i]
				if bt.Parent != nil && !bt.Parent.IsUniv() && bt.Parent.IsAbstract {
					if folded := fold(&e, x, i); folded != nil {
						x = folded
						changed = true
						i--
					}
				}
			}
			if !changed {
				break
			}
		}
		e = append(e, x)
	}
	return e
}

// String renders a human-readable description of t, folding abstract-sig
// partitions for readability.
func (t *Type) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	if t.isInt {
		first = false
		b.WriteString("PrimitiveInteger")
	}
	if t.isBool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString("PrimitiveBoolean")
	}
	for _, r := range t.Fold() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		for i, s := range r {
			if i != 0 {
				b.WriteString("->")
			}
			b.WriteString(s.Name)
		}
	}
	b.WriteByte('}')
	return b.String()
}
