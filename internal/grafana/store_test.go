// internal/grafana/store_test.go
//
// Unit-tests for the grafana.db store using sqlmock.
//
// Run: go test ./internal/grafana -v

package grafana

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/charmkit/grafana/internal/config"
	"github.com/charmkit/grafana/internal/secrets"
)

var frozen = time.Date(2016, 1, 22, 12, 11, 6, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := NewStore(sqlx.NewDb(db, "sqlite"))
	s.now = func() time.Time { return frozen }
	return s, mock
}

func TestEnsureAdminUser(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, login, salt FROM user`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "salt"}).
			AddRow(2, "viewer", "xxxx").
			AddRow(1, "admin", "LZeJ3nSdrC"))

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE user SET email = ?, password = ?, theme = 'light' WHERE id = ?`,
	)).WithArgs("root+juju@localhost", secrets.Hash("s3cret", "LZeJ3nSdrC"), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.EnsureAdminUser(context.Background(), "s3cret", "juju"); err != nil {
		t.Fatalf("EnsureAdminUser error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestEnsureAdminUser_NoAdminRowYet(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, login, salt FROM user`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "salt"}))

	// A fresh database is not an error; the next pass retries.
	if err := s.EnsureAdminUser(context.Background(), "s3cret", "juju"); err != nil {
		t.Fatalf("EnsureAdminUser error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpsertDatasource_Insert(t *testing.T) {
	s, mock := newTestStore(t)

	ds := config.Datasource{
		Type: "prometheus", Name: "BootStack Prometheus", Access: "proxy",
		URL: "http://localhost:9090",
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, type, name, url FROM data_source`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "name", "url"}))

	dtime := frozen.Format("2006-01-02 15:04:05")
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO data_source (org_id, version, type, name, access, url, password, user, database, basic_auth, is_default, json_data, created, updated, with_credentials)
		 VALUES (1, 0, ?, ?, ?, ?, ?, ?, ?, 0, 0, '{}', ?, ?, 0)`,
	)).WithArgs(ds.Type, ds.Name, ds.Access, ds.URL, "", "", "", dtime, dtime).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.UpsertDatasource(context.Background(), ds); err != nil {
		t.Fatalf("UpsertDatasource error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpsertDatasource_Update(t *testing.T) {
	s, mock := newTestStore(t)

	ds := config.Datasource{
		Type: "influxdb", Name: "Telemetry", Access: "proxy",
		URL: "http://influx:8086", Password: "hunter2", User: "grafana", Database: "metrics",
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, type, name, url FROM data_source`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "name", "url"}).
			AddRow(7, "influxdb", "Telemetry", "http://influx:8086"))

	dtime := frozen.Format("2006-01-02 15:04:05")
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE data_source SET access = ?, password = ?, user = ?, database = ?, updated = ? WHERE id = ?`,
	)).WithArgs(ds.Access, ds.Password, ds.User, ds.Database, dtime, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.UpsertDatasource(context.Background(), ds); err != nil {
		t.Fatalf("UpsertDatasource error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
