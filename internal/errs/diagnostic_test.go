package errs

import "testing"

func TestSinkDedup(t *testing.T) {
	s := NewSink()
	pos := Pos{File: "a.als", Line: 3, Column: 5}
	s.Addf(Syntax, pos, "unknown name %s", "Foo")
	s.Addf(Syntax, pos, "unknown name %s", "Foo")
	if len(s.All()) != 1 {
		t.Fatalf("expected dedup to collapse to 1 diagnostic, got %d", len(s.All()))
	}

	s.Addf(Syntax, pos, "unknown name %s", "Bar")
	if len(s.All()) != 2 {
		t.Fatalf("expected distinct message to add a new diagnostic, got %d", len(s.All()))
	}
}

func TestSinkHasErrorsIgnoresWarnings(t *testing.T) {
	s := NewSink()
	s.Addf(Warning, NoPos, "join always empty")
	if s.HasErrors() {
		t.Fatalf("a Warning-only sink should not report HasErrors")
	}
	s.Addf(Type, NoPos, "no compatible candidate")
	if !s.HasErrors() {
		t.Fatalf("expected HasErrors once a Type diagnostic is present")
	}
}

func TestSinkHasFatal(t *testing.T) {
	s := NewSink()
	if s.HasFatal() {
		t.Fatalf("empty sink should not report fatal")
	}
	s.Addf(Fatal, NoPos, "invariant violated")
	if !s.HasFatal() {
		t.Fatalf("expected HasFatal after adding a Fatal diagnostic")
	}
}

func TestSortedOrdersByPosition(t *testing.T) {
	s := NewSink()
	s.Addf(Syntax, Pos{File: "a.als", Line: 10, Column: 1}, "z")
	s.Addf(Syntax, Pos{File: "a.als", Line: 2, Column: 1}, "a")
	sorted := s.Sorted()
	if len(sorted) != 2 || sorted[0].Message != "a" || sorted[1].Message != "z" {
		t.Fatalf("expected sorted order by line, got %+v", sorted)
	}
}

func TestDiagnosticWithCandidates(t *testing.T) {
	d := New(Ambiguous, NoPos, "ambiguous call to p").WithCandidates("p[x: A]: A", "p[x: B]: B")
	if len(d.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(d.Candidates))
	}
	if d.Error() == "" {
		t.Fatalf("expected non-empty error string")
	}
}
