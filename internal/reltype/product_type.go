package reltype

import "strings"

// ProductType is an ordered tuple of PrimSigs: one entry in a Type's
// canonical set. Invariant: 0 < len(sigs) <= MaxArity, and "one element is
// NONE" iff "every element is NONE". Grounded on Type.java's inner
// ProductType class.
type ProductType struct {
	sigs []*PrimSig
}

// NewProductType wraps the given PrimSigs as-is; the caller must not
// mutate the slice afterward.
func NewProductType(sigs []*PrimSig) ProductType {
	return ProductType{sigs: sigs}
}

// unary builds a 1-ary ProductType.
func unary(s *PrimSig) ProductType {
	return ProductType{sigs: []*PrimSig{s}}
}

// repeated builds an n-ary ProductType consisting of n references to s,
// used to build a NONE->..->NONE entry of a given arity.
func repeated(n int, s *PrimSig) ProductType {
	sigs := make([]*PrimSig, n)
	for i := range sigs {
		sigs[i] = s
	}
	return ProductType{sigs: sigs}
}

// Arity returns the number of columns in p.
func (p ProductType) Arity() int { return len(p.sigs) }

// At returns the PrimSig in column i.
func (p ProductType) At(i int) *PrimSig { return p.sigs[i] }

// IsEmpty reports whether p is NONE->..->NONE.
func (p ProductType) IsEmpty() bool { return p.sigs[0].IsNone() }

// Equal reports whether p and that have identical columns.
func (p ProductType) Equal(that ProductType) bool {
	if len(p.sigs) != len(that.sigs) {
		return false
	}
	for i := range p.sigs {
		if p.sigs[i] != that.sigs[i] {
			return false
		}
	}
	return true
}

// isSubtypeOf reports whether p[i] is equal to or a subtype of that[i] for
// every column i. Precondition: p.Arity() == that.Arity().
func (p ProductType) isSubtypeOf(that ProductType) bool {
	for i := range p.sigs {
		if !p.sigs[i].IsSubtypeOf(that.sigs[i]) {
			return false
		}
	}
	return true
}

// transpose swaps the two columns of a binary ProductType. Precondition:
// p.Arity() == 2.
func (p ProductType) transpose() ProductType {
	return ProductType{sigs: []*PrimSig{p.sigs[1], p.sigs[0]}}
}

// product returns the cross product of p and that. If either is
// NONE->..->NONE, the result is NONE->..->NONE at the combined arity.
func (p ProductType) product(that ProductType) (ProductType, error) {
	n := len(p.sigs) + len(that.sigs)
	if n > MaxArity {
		return ProductType{}, errArityOverflow(n)
	}
	if p.IsEmpty() {
		return repeated(n, p.sigs[0]), nil
	}
	if that.IsEmpty() {
		return repeated(n, that.sigs[0]), nil
	}
	sigs := make([]*PrimSig, 0, n)
	sigs = append(sigs, p.sigs...)
	sigs = append(sigs, that.sigs...)
	return ProductType{sigs: sigs}, nil
}

// intersect returns the columnwise intersection of p and that, or
// NONE->..->NONE if any column intersects to NONE. Precondition:
// p.Arity() == that.Arity().
func (p ProductType) intersect(that ProductType) ProductType {
	n := len(p.sigs)
	sigs := make([]*PrimSig, n)
	for i := 0; i < n; i++ {
		c := p.sigs[i].Intersect(that.sigs[i])
		if c.IsNone() {
			for j := range sigs {
				sigs[j] = c
			}
			return ProductType{sigs: sigs}
		}
		sigs[i] = c
	}
	return ProductType{sigs: sigs}
}

// intersects reports whether every column of p and that overlaps.
// Precondition: p.Arity() == that.Arity().
func (p ProductType) intersects(that ProductType) bool {
	for i := range p.sigs {
		if !p.sigs[i].Intersects(that.sigs[i]) {
			return false
		}
	}
	return true
}

// join returns the relational join of p and that: p's last column and
// that's first column are intersected and dropped.
func (p ProductType) join(that ProductType) (ProductType, error) {
	left, right := len(p.sigs), len(that.sigs)
	if left <= 1 && right <= 1 {
		return ProductType{}, errUnaryJoin()
	}
	n := left + right - 2
	if n > MaxArity {
		return ProductType{}, errArityOverflow(n)
	}
	c := p.sigs[left-1].Intersect(that.sigs[0])
	if c.IsNone() {
		return repeated(n, c), nil
	}
	sigs := make([]*PrimSig, 0, n)
	sigs = append(sigs, p.sigs[:left-1]...)
	sigs = append(sigs, that.sigs[1:]...)
	return ProductType{sigs: sigs}, nil
}

// columnRestrict replaces column i with (p[i] & that), or returns
// NONE->..->NONE if that intersection is empty. If i is out of range or
// the intersection leaves the column unchanged, p is returned as-is.
func (p ProductType) columnRestrict(that *PrimSig, i int) ProductType {
	if i < 0 || i >= len(p.sigs) {
		return p
	}
	c := p.sigs[i].Intersect(that)
	if c == p.sigs[i] {
		return p
	}
	if c.IsNone() {
		return repeated(len(p.sigs), c)
	}
	sigs := make([]*PrimSig, len(p.sigs))
	copy(sigs, p.sigs)
	sigs[i] = c
	return ProductType{sigs: sigs}
}

func (p ProductType) String() string {
	var b strings.Builder
	for i, s := range p.sigs {
		if i != 0 {
			b.WriteString("->")
		}
		b.WriteString(s.Name)
	}
	return b.String()
}
