package module

import (
	"time"

	"recordsync/internal/platform/config"
)

// Options holds the report secret and calendar
type Options struct {
	RouteUUID string
	Location  *time.Location
}

// FromConfig reads ROUTE_UUID and REPORT_TIMEZONE
func FromConfig(cfg config.Conf) Options {
	return Options{
		RouteUUID: cfg.MustString("ROUTE_UUID"),
		Location:  cfg.MayLocation("REPORT_TIMEZONE", "UTC"),
	}
}
