package module

import "recordsync/internal/services/retention/domain"

// Ports defines retention module ports
type Ports struct {
	Sweeper domain.Sweeper
}
