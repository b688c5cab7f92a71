// internal/grafana/store.go
//
// Direct access to Grafana's sqlite state.
//
// Context
// -------
// The deb-packaged Grafana of this charm's era has no provisioning API,
// so the charm maintains the admin user and configured datasources by
// editing /var/lib/grafana/grafana.db directly, exactly the tables the
// server itself reads on startup.  The server must be restarted after
// writes to pick them up; the caller sequences that.
//
// Schema touched
// --------------
//   user        – id, login, salt, email, password, theme.
//   data_source – id, org_id, version, type, name, access, url,
//                 password, user, database, basic_auth, is_default,
//                 json_data, created, updated, with_credentials.
//
// Notes
// -----
// • Passwords are stored PBKDF2-SHA256 hashed against the row salt.
// • Oxford commas, two spaces after periods.

package grafana

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/charmkit/grafana/internal/config"
	"github.com/charmkit/grafana/internal/secrets"
)

// DefaultDBPath is where the Grafana deb keeps its sqlite state.
const DefaultDBPath = "/var/lib/grafana/grafana.db"

// Store edits Grafana's own database.  now is injectable for tests.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore returns a Store over an opened grafana.db handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

//
// admin user
//

type userRow struct {
	ID    int64  `db:"id"`
	Login string `db:"login"`
	Salt  string `db:"salt"`
}

// EnsureAdminUser hashes password against the admin row's salt and
// updates the row in place.  A database without an admin row (fresh
// install not yet started) is not an error; the next pass fixes it.
func (s *Store) EnsureAdminUser(ctx context.Context, password, nagiosContext string) error {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, login, salt FROM user`); err != nil {
		return fmt.Errorf("read user table: %w", err)
	}

	for _, row := range rows {
		if row.Login != "admin" {
			continue
		}
		email := fmt.Sprintf("root+%s@localhost", nagiosContext)
		hashed := secrets.Hash(password, row.Salt)
		_, err := s.db.ExecContext(ctx,
			`UPDATE user SET email = ?, password = ?, theme = 'light' WHERE id = ?`,
			email, hashed, row.ID)
		if err != nil {
			return fmt.Errorf("update admin user: %w", err)
		}
		zap.S().Infow("admin password updated", "user_id", row.ID)
		return nil
	}

	zap.S().Warnw("no admin user row yet, skipping password update")
	return nil
}

//
// datasources
//

type datasourceRow struct {
	ID   int64  `db:"id"`
	Type string `db:"type"`
	Name string `db:"name"`
	URL  string `db:"url"`
}

// UpsertDatasource makes the data_source table reflect ds, matching
// existing rows on (type, name, url).
func (s *Store) UpsertDatasource(ctx context.Context, ds config.Datasource) error {
	var rows []datasourceRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, type, name, url FROM data_source`); err != nil {
		return fmt.Errorf("read data_source table: %w", err)
	}

	dtime := s.now().Format("2006-01-02 15:04:05")

	for _, row := range rows {
		if row.Type != ds.Type || row.Name != ds.Name || row.URL != ds.URL {
			continue
		}
		_, err := s.db.ExecContext(ctx,
			`UPDATE data_source SET access = ?, password = ?, user = ?, database = ?, updated = ? WHERE id = ?`,
			ds.Access, ds.Password, ds.User, ds.Database, dtime, row.ID)
		if err != nil {
			return fmt.Errorf("update datasource %q: %w", ds.Name, err)
		}
		zap.S().Infow("datasource updated", "name", ds.Name, "type", ds.Type)
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO data_source (org_id, version, type, name, access, url, password, user, database, basic_auth, is_default, json_data, created, updated, with_credentials)
		 VALUES (1, 0, ?, ?, ?, ?, ?, ?, ?, 0, 0, '{}', ?, ?, 0)`,
		ds.Type, ds.Name, ds.Access, ds.URL, ds.Password, ds.User, ds.Database, dtime, dtime)
	if err != nil {
		return fmt.Errorf("insert datasource %q: %w", ds.Name, err)
	}
	zap.S().Infow("datasource added", "name", ds.Name, "type", ds.Type)
	return nil
}
