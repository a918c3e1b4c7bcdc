// Package sqlconn adapts database/sql handles to the pool's Connection
// capability. Each Conn owns a dedicated handle limited to a single
// underlying connection, matching the pool's one-connection-per-worker
// model: the record-mapping layer above the pool issues queries against
// whichever Conn the pool hands it.
//
// SQLite (mattn/go-sqlite3) and MySQL (go-sql-driver/mysql) drivers are
// registered by importing this package.
package sqlconn

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/go-i2p/logger"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	dberrors "github.com/go-i2p/dbpool/lib/errors"
)

var log = logger.GetGoI2PLogger()

// Conn is a database connection backed by a dedicated database/sql handle.
// It satisfies pool.Connection: IsClosed is a plain flag read with no I/O.
type Conn struct {
	db     *sql.DB
	driver string
	closed atomic.Bool
}

// Open dials a database and returns a Conn owning the handle. The handle is
// capped at one underlying connection so a pool slot maps 1:1 to a database
// connection. The DSN is verified with a ping before the Conn is returned.
func Open(driver, dsn string) (*Conn, error) {
	switch driver {
	case "sqlite3", "mysql":
	default:
		return nil, fmt.Errorf("%w: %q", dberrors.ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlconn: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlconn: ping: %w", err)
	}

	log.WithField("driver", driver).Debug("database connection opened")
	return &Conn{db: db, driver: driver}, nil
}

// IsClosed reports whether Close has been called.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Close closes the underlying handle. The pool notices the flag on its next
// eviction sweep and frees the slot.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return dberrors.ErrConnClosed
	}
	log.WithField("driver", c.driver).Debug("database connection closed")
	return c.db.Close()
}

// Driver returns the driver name the connection was opened with.
func (c *Conn) Driver() string {
	return c.driver
}

// DB exposes the underlying handle for layers that need the full
// database/sql surface (prepared statements, transactions).
func (c *Conn) DB() *sql.DB {
	return c.db
}

// ExecContext runs a statement that returns no rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.closed.Load() {
		return nil, dberrors.ErrConnClosed
	}
	return c.db.ExecContext(ctx, query, args...)
}

// QueryContext runs a query that returns rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c.closed.Load() {
		return nil, dberrors.ErrConnClosed
	}
	return c.db.QueryContext(ctx, query, args...)
}

// Ping verifies the database is still reachable.
func (c *Conn) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return dberrors.ErrConnClosed
	}
	return c.db.PingContext(ctx)
}
