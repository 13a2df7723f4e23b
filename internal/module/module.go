// Package module is the entry point tying the two analysis passes
// together: internal/resolver builds the signature graph and function
// signatures, internal/elaborator type-checks and disambiguates every
// body, and a Session stamps the result with an identity so a value from
// one analysis can never be silently reused in another (spec.md §5's
// "forbid cross-session leakage by construction"). Grounded on
// internal/analyzer/analyzer.go's Analyzer/LoadedModule split between a
// long-lived driver (Analyzer here is Session) and its frozen output
// (LoadedModule here is Module), adapted from Funxy's naming/headers/
// instances/bodies passes to this core's simpler resolve-then-elaborate
// split.
package module

import (
	"context"

	"github.com/google/uuid"

	"github.com/alloy-rel/core/internal/ast"
	"github.com/alloy-rel/core/internal/config"
	"github.com/alloy-rel/core/internal/elaborator"
	"github.com/alloy-rel/core/internal/errs"
	"github.com/alloy-rel/core/internal/reltype"
	"github.com/alloy-rel/core/internal/resolver"
	"github.com/alloy-rel/core/internal/typedast"
)

// Session drives one analysis. Its ID tags the Graph it builds so a
// -tags alloydebug build can catch a *reltype.Type or *reltype.PrimSig
// computed under one Session leaking into an operation that belongs to
// another; outside that build tag the check is a no-op.
type Session struct {
	ID  uuid.UUID
	Cfg config.Options
}

// New starts a Session configured with cfg.
func New(cfg config.Options) *Session {
	return &Session{ID: uuid.New(), Cfg: cfg}
}

// NewDefault starts a Session with config.Default().
func NewDefault() *Session {
	return New(config.Default())
}

// Module is the frozen result of one Compile: every signature, field,
// function/predicate signature and their typed bodies (keyed by
// *typedast.FuncSig since a name may have more than one overload), named
// facts and assertions, and the commands queued against them.
type Module struct {
	SessionID  uuid.UUID
	Graph      *reltype.Graph
	Funcs      map[string][]*typedast.FuncSig
	FuncBodies map[*typedast.FuncSig]typedast.Expr
	Facts      map[string]typedast.Expr
	Asserts    map[string]typedast.Expr
	Commands   []*ast.CommandDecl
}

// Compile runs pass 1 (internal/resolver) then pass 2 (internal/
// elaborator) over prog. Both passes already recover at declaration
// granularity (spec.md §7): a bad sig, field, function, fact, or
// assertion is recorded in the returned Sink and the rest of the module
// is still compiled. Compile always returns the Module with whatever did
// compile, even when diagnostics were recorded — every diagnostic, fatal or
// not, is surfaced through the Sink, leaving the caller to decide whether HasErrors() is acceptable for its
// purposes (e.g. an editor may still want a best-effort Module to drive
// completion from).
func (s *Session) Compile(ctx context.Context, prog *ast.Program) (*Module, *errs.Sink) {
	sink := errs.NewSink()
	out := resolver.Resolve(ctx, prog, s.Cfg, sink)
	markSession(out.Graph, s.ID)
	res := elaborator.Elaborate(ctx, out, s.Cfg, sink)

	return &Module{
		SessionID:  s.ID,
		Graph:      out.Graph,
		Funcs:      out.Funcs,
		FuncBodies: res.FuncBodies,
		Facts:      res.Facts,
		Asserts:    res.Asserts,
		Commands:   res.Commands,
	}, sink
}
