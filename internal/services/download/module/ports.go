package module

import "recordsync/internal/services/download/domain"

// Ports defines download module ports
type Ports struct {
	Scheduler domain.Scheduler
}
