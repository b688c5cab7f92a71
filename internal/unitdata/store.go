// internal/unitdata/store.go
//
// Per-unit key/value state.
//
// Context
// -------
// A few facts must survive agent restarts: the admin password we
// generated (so a config-changed event does not mint a new one), and
// the port we last opened (so a port change closes the old one exactly
// once).  They live in a tiny sqlite-backed kv table next to the
// agent's own files, mirroring the unitdata store of the original
// charm runtime.
//
// Notes
// -----
// • Values are strings; callers own any further parsing.
// • Oxford commas, two spaces after periods.

package unitdata

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// Well-known keys.
const (
	KeyPort          = "grafana.port"
	KeyAdminPassword = "grafana.admin_password"
)

// Store wraps the kv table.  Safe for concurrent use to the extent the
// underlying *sqlx.DB is.
type Store struct {
	db *sqlx.DB
}

// New ensures the kv table exists and returns a Store over db.
func New(db *sqlx.DB) (*Store, error) {
	const schema = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("unitdata schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the value for key, with ok == false when the key has
// never been set.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	err = s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("unitdata get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores or replaces the value for key.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("unitdata set %s: %w", key, err)
	}
	return nil
}

// SwapPort records port as the currently open port and reports the
// previously recorded one.  changed == false means the port is already
// current and no open/close action is needed.
func (s *Store) SwapPort(port uint16) (prev uint16, changed bool, err error) {
	val, ok, err := s.Get(KeyPort)
	if err != nil {
		return 0, false, err
	}
	if ok {
		n, perr := strconv.Atoi(val)
		if perr == nil {
			prev = uint16(n)
		}
	}
	if ok && prev == port {
		return prev, false, nil
	}

	if err := s.Set(KeyPort, strconv.Itoa(int(port))); err != nil {
		return 0, false, err
	}
	return prev, true, nil
}
