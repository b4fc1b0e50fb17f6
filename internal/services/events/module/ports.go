package module

import "recordsync/internal/services/events/domain"

// Ports exposes the classifier so the process can drain it on shutdown
type Ports struct {
	Classifier domain.Classifier
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
