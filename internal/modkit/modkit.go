package modkit

import "recordsync/internal/modkit/module"

// Module is the surface api.Mount composes, HTTP modules and workers alike
type Module = module.Module
