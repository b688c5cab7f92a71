// internal/nrpe/nrpe_test.go
//
// Run: go test ./internal/nrpe -v

package nrpe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		CheckDir:      filepath.Join(t.TempDir(), "nrpe.d"),
		ExportDir:     filepath.Join(t.TempDir(), "export"),
		Context:       "bootstack",
		Servicegroups: "bootstack-ops",
		Unit:          "grafana-0",
	}
}

func TestWrite(t *testing.T) {
	c := testConfig(t)
	if err := c.Write(); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	check, err := os.ReadFile(filepath.Join(c.CheckDir, "check_grafana-server.cfg"))
	if err != nil {
		t.Fatalf("check definition missing: %v", err)
	}
	if !strings.Contains(string(check), "command[check_grafana-server]") {
		t.Errorf("unexpected check definition:\n%s", check)
	}

	export, err := os.ReadFile(filepath.Join(c.ExportDir, "service__bootstack-grafana-0_grafana-server.cfg"))
	if err != nil {
		t.Fatalf("service export missing: %v", err)
	}
	for _, want := range []string{
		"host_name               bootstack-grafana-0",
		"servicegroups           bootstack-ops",
		"check_command           check_nrpe!check_grafana-server",
	} {
		if !strings.Contains(string(export), want) {
			t.Errorf("service export missing %q:\n%s", want, export)
		}
	}
}

func TestWipe(t *testing.T) {
	c := testConfig(t)
	if err := c.Write(); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := c.Wipe(); err != nil {
		t.Fatalf("Wipe error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(c.CheckDir, "check_grafana-server.cfg")); !os.IsNotExist(err) {
		t.Errorf("check definition survived wipe")
	}
	matches, _ := filepath.Glob(filepath.Join(c.ExportDir, "service__*_grafana-server.cfg"))
	if len(matches) != 0 {
		t.Errorf("service exports survived wipe: %v", matches)
	}
}

func TestWipeMissingIsNoop(t *testing.T) {
	c := testConfig(t)
	if err := c.Wipe(); err != nil {
		t.Fatalf("Wipe on empty dirs should succeed: %v", err)
	}
}
