package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fenilmodi00/sebi-ipo-api/shared"
	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// Store wraps the MySQL connection pool. All request-scoped reads go
// through Acquire so the acquire/release discipline is explicit and
// testable instead of hidden behind the pool.
type Store struct {
	db          *sql.DB
	pingTimeout time.Duration
}

// Connect opens the pool with default configuration.
func Connect(dsn string) (*Store, error) {
	cfg := shared.NewDefaultDatabaseConfig()
	return ConnectWithConfig(dsn, &cfg)
}

// ConnectWithConfig opens the pool with custom configuration. The server is
// not required to be reachable: a failed startup ping is logged, not fatal,
// so the process can still serve /health truthfully while MySQL is down.
func ConnectWithConfig(dsn string, cfg *shared.DatabaseConfig) (*Store, error) {
	cfg.ValidateAndApplyDefaults()

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	store := &Store{db: db, pingTimeout: cfg.PingTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logrus.WithField("error", err).Warn("Database unreachable at startup, continuing; /health will report unhealthy")
	} else {
		logrus.WithFields(logrus.Fields{
			"max_open_conns":     cfg.MaxOpenConns,
			"max_idle_conns":     cfg.MaxIdleConns,
			"conn_max_lifetime":  cfg.ConnMaxLifetime,
			"conn_max_idle_time": cfg.ConnMaxIdleTime,
		}).Info("Connected to database successfully")
	}

	return store, nil
}

// Acquire checks a dedicated connection out of the pool. Callers must
// Release it on every path; a failed acquire is the connection failure the
// API reports as 500 "Database connection failed".
func (s *Store) Acquire(ctx context.Context) (*Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	return &Conn{conn: conn}, nil
}

// Ping probes connectivity with the configured timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close shuts the pool down.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	s.db.Close()
	logrus.Info("Database connection closed")
}

// Conn is a single checked-out connection.
type Conn struct {
	conn     *sql.Conn
	released bool
}

// Release returns the connection to the pool. Safe on nil receivers and on
// repeated calls.
func (c *Conn) Release() error {
	if c == nil || c.conn == nil || c.released {
		return nil
	}
	c.released = true
	return c.conn.Close()
}

// QueryContext runs a query on this connection.
func (c *Conn) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on this connection.
func (c *Conn) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.conn.QueryRowContext(ctx, query, args...)
}
