package errs

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the taxonomy of failure modes from spec.md §7.
type Kind int

const (
	// Syntax covers malformed input or an unresolvable/ambiguous name.
	// Recovered across top-level declarations.
	Syntax Kind = iota
	// Type covers elaboration producing no compatible candidate, or an
	// unsatisfied top-down constraint. The enclosing declaration is dropped.
	Type
	// TypeArity covers an arity that would exceed MAXARITY. Fatal for the
	// enclosing expression.
	TypeArity
	// Ambiguous covers multiple surviving candidates after tie-breaking.
	Ambiguous
	// Fatal covers an internal invariant violation. Fails the whole analysis.
	Fatal
	// Warning is non-fatal advisory output, collected separately and never
	// aborts the analysis (e.g. "join always empty").
	Warning
	// Cancelled is returned when a cooperative cancellation token fires
	// mid-computation (see spec.md §5).
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Type:
		return "type"
	case TypeArity:
		return "arity"
	case Ambiguous:
		return "ambiguous"
	case Fatal:
		return "fatal"
	case Warning:
		return "warning"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Candidate describes one surviving elaboration reported alongside an
// Ambiguous diagnostic, so an editor can show the user what was considered.
type Candidate struct {
	Description string // e.g. a rendered Type or a function signature
}

// Diagnostic is a single reported failure or advisory.
type Diagnostic struct {
	Kind       Kind
	Pos        Pos
	Message    string
	Candidates []Candidate
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Pos, d.Kind, d.Message)
	for _, c := range d.Candidates {
		fmt.Fprintf(&b, "\n    candidate: %s", c.Description)
	}
	return b.String()
}

// New builds a Diagnostic. Message is formatted with fmt.Sprintf semantics.
func New(kind Kind, pos Pos, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// WithCandidates attaches candidate descriptions (used for Ambiguous) and
// returns the same Diagnostic for chaining.
func (d *Diagnostic) WithCandidates(descs ...string) *Diagnostic {
	for _, s := range descs {
		d.Candidates = append(d.Candidates, Candidate{Description: s})
	}
	return d
}

// Sink accumulates diagnostics for one analysis session, deduplicating by
// (position, kind, message) the way internal/analyzer's walker.addError does in the
// teacher repo: a single offending node should not produce one diagnostic
// per visitor pass that happens to revisit it.
type Sink struct {
	seen  map[string]*Diagnostic
	order []string
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{seen: make(map[string]*Diagnostic)}
}

func dedupKey(d *Diagnostic) string {
	return fmt.Sprintf("%s:%d:%d:%s:%s", d.Pos.File, d.Pos.Line, d.Pos.Column, d.Kind, d.Message)
}

// Add records a diagnostic, ignoring an exact duplicate.
func (s *Sink) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	key := dedupKey(d)
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = d
	s.order = append(s.order, key)
}

// Addf is a convenience wrapper: builds and adds a Diagnostic in one call.
func (s *Sink) Addf(kind Kind, pos Pos, format string, args ...any) {
	s.Add(New(kind, pos, format, args...))
}

// All returns every accumulated diagnostic in insertion order.
func (s *Sink) All() []*Diagnostic {
	out := make([]*Diagnostic, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.seen[key])
	}
	return out
}

// HasErrors reports whether any non-Warning diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.seen {
		if d.Kind != Warning {
			return true
		}
	}
	return false
}

// HasFatal reports whether any Fatal diagnostic was recorded; callers
// should stop the whole analysis rather than continue to the next
// declaration.
func (s *Sink) HasFatal() bool {
	for _, d := range s.seen {
		if d.Kind == Fatal {
			return true
		}
	}
	return false
}

// Sorted returns diagnostics ordered by (file, line, column), suitable for
// stable display; ties keep insertion order.
func (s *Sink) Sorted() []*Diagnostic {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}
