// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "recordsync/internal/platform/net/http"
)

// Module is implemented by HTTP modules and by background workers
// workers mount nothing and expose their loop through Ports
// kept apart from modkit so a module's ports package can import it without a cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
