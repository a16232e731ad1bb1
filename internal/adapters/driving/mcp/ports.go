package mcp

import (
	"github.com/iguales-labs/policykb-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// KB provides knowledge-base loading and retrieval.
	KB driving.KBService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.KB == nil {
		return ErrMissingKBService
	}
	return nil
}
