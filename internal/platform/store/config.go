package store

import (
	"time"

	"recordsync/internal/platform/config"
)

// Config aggregates backend configuration
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// AutoMigrate applies embedded migrations at boot
	AutoMigrate bool

	// boot guard knobs, zero picks the defaults in openPG
	ConnectRetries int
	PingTimeout    time.Duration
}

// PGFromConfig reads postgres settings under the SERVICE_PGSQL_ prefix
func PGFromConfig(root config.Conf) PGConfig {
	c := root.Prefix("SERVICE_PGSQL_")
	return PGConfig{
		Enabled:        true,
		URL:            c.MustString("DBURL"),
		MaxConns:       int32(c.MayInt("MAX_CONNS", 4)),
		SlowQueryMs:    c.MayInt("SLOW_MS", 500),
		LogSQL:         c.MayBool("LOG_SQL", false),
		AutoMigrate:    c.MayBool("AUTO_MIGRATE", true),
		ConnectRetries: c.MayInt("CONNECT_RETRIES", 20),
		PingTimeout:    c.MayDuration("PING_TIMEOUT", 3*time.Second),
	}
}
