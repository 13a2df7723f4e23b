//go:build !alloydebug

package module

import (
	"github.com/google/uuid"

	"github.com/alloy-rel/core/internal/reltype"
)

func markSession(*reltype.Graph, uuid.UUID) {}

// CheckSession is a no-op outside -tags alloydebug builds.
func CheckSession(*reltype.Graph, uuid.UUID) {}
