package reltype

import "testing"

func TestBuiltinSubtyping(t *testing.T) {
	b := NewBuiltins()
	if !b.NONE.IsSubtypeOf(b.UNIV) {
		t.Errorf("none should be a subtype of univ")
	}
	if !b.SIGINT.IsSubtypeOf(b.UNIV) {
		t.Errorf("Int should be a subtype of univ")
	}
	if b.UNIV.IsSubtypeOf(b.SIGINT) {
		t.Errorf("univ should not be a subtype of Int")
	}
	if !b.UNIV.IsSubtypeOf(b.UNIV) {
		t.Errorf("univ should be a subtype of itself")
	}
}

func TestPrimSigIsSubtypeOfAncestor(t *testing.T) {
	b := NewBuiltins()
	person := &PrimSig{Name: "Person", Parent: b.UNIV}
	student := &PrimSig{Name: "Student", Parent: person}

	if !student.IsSubtypeOf(person) {
		t.Errorf("Student should be a subtype of Person")
	}
	if !student.IsSubtypeOf(b.UNIV) {
		t.Errorf("Student should be a subtype of univ")
	}
	if person.IsSubtypeOf(student) {
		t.Errorf("Person should not be a subtype of Student")
	}
}

func TestPrimSigIntersectUnrelatedIsNone(t *testing.T) {
	g := NewGraph()
	person := &PrimSig{Name: "Person", Parent: g.Builtins.UNIV}
	book := &PrimSig{Name: "Book", Parent: g.Builtins.UNIV}
	if err := g.AddPrimSig(person); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddPrimSig(book); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := person.Intersect(book); !got.IsNone() {
		t.Errorf("Person & Book = %v, want none", got)
	}
	if person.Intersects(book) {
		t.Errorf("Person and Book should not intersect")
	}
}

func TestPrimSigIntersectAncestorDescendant(t *testing.T) {
	b := NewBuiltins()
	person := &PrimSig{Name: "Person", Parent: b.UNIV}
	student := &PrimSig{Name: "Student", Parent: person}

	if got := person.Intersect(student); got != student {
		t.Errorf("Person & Student = %v, want Student", got)
	}
	if !person.Intersects(student) {
		t.Errorf("Person and Student should intersect")
	}
}

func TestChildrenTracksDeclarationOrder(t *testing.T) {
	b := NewBuiltins()
	parent := &PrimSig{Name: "Shape", Parent: b.UNIV, IsAbstract: true}
	circle := &PrimSig{Name: "Circle", Parent: parent}
	square := &PrimSig{Name: "Square", Parent: parent}
	parent.addChild(circle)
	parent.addChild(square)

	children := parent.Children()
	if len(children) != 2 || children[0] != circle || children[1] != square {
		t.Errorf("Children() = %v, want [Circle Square]", children)
	}
}

func TestSubsetSigTypeIsUnionOfParents(t *testing.T) {
	b := NewBuiltins()
	person := &PrimSig{Name: "Person", Parent: b.UNIV}
	book := &PrimSig{Name: "Book", Parent: b.UNIV}
	readable := &SubsetSig{Name: "Readable", Parents: []*PrimSig{person, book}}

	typ := readable.Type()
	if !typ.HasArity(1) {
		t.Errorf("Readable's type should have arity 1")
	}
	if typ.Size() != 2 {
		t.Errorf("Readable's type should have 2 entries, got %d", typ.Size())
	}
}
