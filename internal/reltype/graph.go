package reltype

import "fmt"

// Graph is the signature hierarchy for one analysis session. It is a
// builder while the Resolver is running and is frozen before the
// Elaborator sees it, matching the session/module freezing rule: a Graph
// must never be mutated once any Type computed from it could have leaked
// into another session.
type Graph struct {
	frozen     bool
	byName     map[string]any
	primSigs   []*PrimSig
	subsetSigs []*SubsetSig

	// Builtins is this Graph's own univ/none/Int, private to it (see
	// Builtins' doc comment): no two Graphs ever share these PrimSigs.
	Builtins *Builtins
}

// NewGraph returns a Graph pre-populated with its own private builtins:
// univ, none, and Int.
func NewGraph() *Graph {
	b := NewBuiltins()
	g := &Graph{byName: make(map[string]any), Builtins: b}
	g.byName["univ"] = b.UNIV
	g.byName["none"] = b.NONE
	g.byName["Int"] = b.SIGINT
	return g
}

func (g *Graph) checkOpen() error {
	if g.frozen {
		return fmt.Errorf("reltype: graph is frozen, no further signatures can be declared")
	}
	return nil
}

// AddPrimSig registers a new PrimSig, wiring it into its parent's child
// list if it declares one. Fails if the graph is frozen or the name or one
// of its aliases collides with an existing signature.
func (g *Graph) AddPrimSig(s *PrimSig) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	if _, exists := g.byName[s.Name]; exists {
		return fmt.Errorf("reltype: signature %q is already declared", s.Name)
	}
	for _, alias := range s.Aliases {
		if _, exists := g.byName[alias]; exists && alias != "" {
			return fmt.Errorf("reltype: signature name %q is already declared", alias)
		}
	}
	if s.Parent != nil {
		s.Parent.addChild(s)
	}
	s.none = g.Builtins.NONE
	g.byName[s.Name] = s
	for _, alias := range s.Aliases {
		if alias != "" {
			g.byName[alias] = s
		}
	}
	g.primSigs = append(g.primSigs, s)
	return nil
}

// AddSubsetSig registers a new SubsetSig. Fails if the graph is frozen,
// the name or one of its aliases collides, or no parents were given.
func (g *Graph) AddSubsetSig(s *SubsetSig) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	if _, exists := g.byName[s.Name]; exists {
		return fmt.Errorf("reltype: signature %q is already declared", s.Name)
	}
	if len(s.Parents) == 0 {
		return fmt.Errorf("reltype: subset signature %q must list at least one parent", s.Name)
	}
	for _, alias := range s.Aliases {
		if _, exists := g.byName[alias]; exists && alias != "" {
			return fmt.Errorf("reltype: signature name %q is already declared", alias)
		}
	}
	g.byName[s.Name] = s
	for _, alias := range s.Aliases {
		if alias != "" {
			g.byName[alias] = s
		}
	}
	g.subsetSigs = append(g.subsetSigs, s)
	return nil
}

// Lookup resolves a name to a *PrimSig or *SubsetSig. ok is false for an
// unknown name; a name registered by two declarations is rejected at
// AddPrimSig/AddSubsetSig time, so Lookup never needs to report ambiguity
// itself.
func (g *Graph) Lookup(name string) (sig any, ok bool) {
	v, ok := g.byName[name]
	return v, ok
}

// LookupPrimSig resolves name to a *PrimSig, failing ok if the name is
// unknown or resolves to a SubsetSig instead.
func (g *Graph) LookupPrimSig(name string) (*PrimSig, bool) {
	v, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	p, ok := v.(*PrimSig)
	return p, ok
}

// PrimSigs returns every user-declared PrimSig in declaration order
// (excluding univ, none and Int).
func (g *Graph) PrimSigs() []*PrimSig { return g.primSigs }

// SubsetSigs returns every declared SubsetSig in declaration order.
func (g *Graph) SubsetSigs() []*SubsetSig { return g.subsetSigs }

// AliasBuiltin registers an additional lookup name for one of the three
// built-in signatures (univ/none/Int), so a session configured with
// non-default builtin names (config.Options.UnivName et al.) can still
// resolve references written under the custom name.
func (g *Graph) AliasBuiltin(alias string, sig *PrimSig) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	if _, exists := g.byName[alias]; exists {
		return fmt.Errorf("reltype: name %q is already declared", alias)
	}
	g.byName[alias] = sig
	return nil
}

// LinkParent resolves a forward-declared "extends" reference: it sets
// child.Parent and wires child into parent's children list. Used by the
// Resolver once it has looked up the textual parent name captured at parse
// time (spec.md §4.F step 1). Fails if child already has a different parent
// linked, which would indicate a programmer error in the caller.
func (g *Graph) LinkParent(child, parent *PrimSig) error {
	if child.Parent != nil && child.Parent != parent {
		return fmt.Errorf("reltype: signature %q already has a parent linked", child.Name)
	}
	child.Parent = parent
	parent.addChild(child)
	return nil
}

// Freeze forbids further declarations. Called once the Resolver finishes
// pass 1, before the Elaborator begins pass 2.
func (g *Graph) Freeze() { g.frozen = true }

// IsFrozen reports whether the graph has been frozen.
func (g *Graph) IsFrozen() bool { return g.frozen }
