package module

import (
	"recordsync/internal/services/credentials/domain"
	quota "recordsync/internal/services/quota/domain"
)

// Ports carries the injected Governor in and exposes the Manager out
type Ports struct {
	Governor quota.Governor
	Manager  domain.Manager
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
