package module

import "recordsync/internal/services/report/domain"

// Ports defines report module ports
type Ports struct {
	Reporter domain.Reporter
}
