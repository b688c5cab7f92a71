// Package database centralises sqlx connection helpers.  Grafana keeps
// its state in a single sqlite file (grafana.db), and the charm's own
// unit state lives in another, so the default driver is modernc.org/sqlite
// (pure Go, no cgo toolchain needed on the unit).
//
// Public entry points:
//
//	Open(path)                 – open an existing database file.
//	OpenWithTimeout(path, d)   – tune the busy timeout per pool.
//
// Both helpers Ping the database before returning so callers can fail
// fast during bootstrap.  Callers should Close() the returned *sqlx.DB
// when no longer needed.
package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open returns a *sqlx.DB on the sqlite file at path with a 30-second
// busy timeout, matching how the Grafana server itself opens the file.
func Open(path string) (*sqlx.DB, error) {
	return OpenWithTimeout(path, 30*time.Second)
}

// OpenWithTimeout lets callers tune the busy timeout.  sqlite allows a
// single writer, so the pool is pinned to one connection.
func OpenWithTimeout(path string, busy time.Duration) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, busy.Milliseconds())
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
