package sqlconn

import (
	"github.com/go-i2p/dbpool/lib/config"
	"github.com/go-i2p/dbpool/lib/pool"
)

// interface guard
var _ pool.Connection = (*Conn)(nil)

// Factory returns a pool.Factory that opens an isolated connection per
// pool slot.
func Factory(driver, dsn string) pool.Factory {
	return func() (pool.Connection, error) {
		return Open(driver, dsn)
	}
}

// FromConfig builds a factory from the [database] section of a config file.
func FromConfig(cfg config.DatabaseConfig) pool.Factory {
	return Factory(cfg.Driver, cfg.DSN)
}
