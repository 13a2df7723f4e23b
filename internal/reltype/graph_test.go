package reltype

import "testing"

func TestNewGraphHasBuiltins(t *testing.T) {
	g := NewGraph()
	if _, ok := g.LookupPrimSig("univ"); !ok {
		t.Errorf("expected univ to be registered")
	}
	if _, ok := g.LookupPrimSig("Int"); !ok {
		t.Errorf("expected Int to be registered")
	}
}

func TestAddPrimSigRejectsDuplicateName(t *testing.T) {
	g := NewGraph()
	person := &PrimSig{Name: "Person", Parent: g.Builtins.UNIV}
	if err := g.AddPrimSig(person); err != nil {
		t.Fatalf("unexpected error adding Person: %v", err)
	}
	dup := &PrimSig{Name: "Person", Parent: g.Builtins.UNIV}
	if err := g.AddPrimSig(dup); err == nil {
		t.Errorf("expected an error redeclaring Person")
	}
}

func TestAddSubsetSigRequiresParents(t *testing.T) {
	g := NewGraph()
	s := &SubsetSig{Name: "Empty"}
	if err := g.AddSubsetSig(s); err == nil {
		t.Errorf("expected an error for a subset sig with no parents")
	}
}

func TestFreezeRejectsFurtherDeclarations(t *testing.T) {
	g := NewGraph()
	g.Freeze()
	if err := g.AddPrimSig(&PrimSig{Name: "Late", Parent: g.Builtins.UNIV}); err == nil {
		t.Errorf("expected an error declaring a sig on a frozen graph")
	}
}

func TestAddPrimSigWiresParentChild(t *testing.T) {
	g := NewGraph()
	person := &PrimSig{Name: "Person", Parent: g.Builtins.UNIV}
	if err := g.AddPrimSig(person); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, c := range g.Builtins.UNIV.Children() {
		if c == person {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Person to appear in univ's children")
	}
}

func TestTwoGraphsDoNotShareBuiltins(t *testing.T) {
	g1 := NewGraph()
	g2 := NewGraph()
	if g1.Builtins.UNIV == g2.Builtins.UNIV {
		t.Fatalf("expected independent Graphs to have distinct univ instances")
	}
	if err := g1.AddPrimSig(&PrimSig{Name: "Person", Parent: g1.Builtins.UNIV}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g2.Builtins.UNIV.Children()) != 1 {
		t.Errorf("expected g2's univ to still have only its builtin Int child, got %d children", len(g2.Builtins.UNIV.Children()))
	}
}
