//go:build alloydebug

package module

import (
	"sync"

	"github.com/google/uuid"

	"github.com/alloy-rel/core/internal/reltype"
)

var (
	sessionMu sync.Mutex
	sessionOf = make(map[*reltype.Graph]uuid.UUID)
)

func markSession(g *reltype.Graph, id uuid.UUID) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	sessionOf[g] = id
}

// CheckSession panics if g was stamped by a Session other than id,
// catching a *reltype.Type or *reltype.PrimSig that crossed a Session
// boundary (spec.md §5). Only compiled into -tags alloydebug builds.
func CheckSession(g *reltype.Graph, id uuid.UUID) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if owner, ok := sessionOf[g]; ok && owner != id {
		panic("alloydebug: reltype value crossed a Session boundary")
	}
}
