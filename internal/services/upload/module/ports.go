package module

import "recordsync/internal/services/upload/domain"

// Ports defines upload module ports
type Ports struct {
	Scheduler domain.Scheduler
}
