// internal/install/installer_test.go
//
// Unit-tests for the repository install path with a recording runner.
//
// Run: go test ./internal/install -v

package install

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmkit/grafana/internal/config"
)

func newTestInstaller(t *testing.T) (*Installer, *[][]string) {
	t.Helper()
	var rec [][]string
	dir := t.TempDir()
	i := &Installer{
		run: func(_ context.Context, name string, arg ...string) ([]byte, error) {
			rec = append(rec, append([]string{name}, arg...))
			return nil, nil
		},
		SourcesPath: filepath.Join(dir, "grafana.list"),
		DownloadDir: dir,
	}
	return i, &rec
}

func TestEnsure_RepositoryInstall(t *testing.T) {
	inst, rec := newTestInstaller(t)

	spec := config.InstallSpec{Repos: []config.Repo{
		{Source: "deb https://example.com/a stable main", Key: "KEYA"},
		{Source: "deb https://example.com/b stable main", Key: ""},
	}}

	if err := inst.Ensure(context.Background(), spec); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}

	body, err := os.ReadFile(inst.SourcesPath)
	if err != nil {
		t.Fatalf("sources fragment not written: %v", err)
	}
	if !strings.Contains(string(body), "deb https://example.com/a stable main\n") ||
		!strings.Contains(string(body), "deb https://example.com/b stable main\n") {
		t.Fatalf("unexpected sources fragment:\n%s", body)
	}

	want := [][]string{
		{"apt-key", "adv", "--keyserver", keyserver, "--recv-keys", "KEYA"},
		{"apt-get", "update", "-q"},
		{"apt-get", "install", "-qy", "grafana"},
	}
	if len(*rec) != len(want) {
		t.Fatalf("commands = %v, want %v", *rec, want)
	}
	for i := range want {
		if strings.Join((*rec)[i], " ") != strings.Join(want[i], " ") {
			t.Errorf("cmd[%d] = %v, want %v", i, (*rec)[i], want[i])
		}
	}
}

func TestEnsure_RepositoryUnchangedSkipsUpdate(t *testing.T) {
	inst, rec := newTestInstaller(t)

	spec := config.InstallSpec{Repos: []config.Repo{
		{Source: "deb https://example.com/a stable main", Key: "KEYA"},
	}}

	if err := inst.Ensure(context.Background(), spec); err != nil {
		t.Fatalf("first Ensure error: %v", err)
	}
	*rec = nil

	if err := inst.Ensure(context.Background(), spec); err != nil {
		t.Fatalf("second Ensure error: %v", err)
	}
	if len(*rec) != 1 || strings.Join((*rec)[0], " ") != "apt-get install -qy grafana" {
		t.Fatalf("unchanged sources should only apt-get install, got %v", *rec)
	}
}
