// internal/config/loader_test.go
//
// Unit-tests for the layered loader: defaults → charm.yaml → CHARM_*
// environment, plus vault: reference resolution.
//
// Run: go test ./internal/config -v

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCharmYAML(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "conf", "charm.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	t.Setenv("CHARM_ROOT", t.TempDir()) // no charm.yaml present

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AppMode != "production" || cfg.Port != 3000 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Install.Repos) != 1 {
		t.Fatalf("expected one default repo, got %+v", cfg.Install.Repos)
	}
	if got := Get(); got != cfg {
		t.Fatalf("Get() did not return the cached config")
	}
}

func TestLoad_FileAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	writeCharmYAML(t, dir, "app_mode: \"development\"\nport: \"3100\"\n")
	t.Setenv("CHARM_ROOT", dir)
	t.Setenv("CHARM_PORT", "3200") // env beats file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AppMode != "development" {
		t.Errorf("app_mode = %q, want file value", cfg.AppMode)
	}
	if cfg.Port != 3200 {
		t.Errorf("port = %d, want env override 3200", cfg.Port)
	}
}

func TestLoad_ValidationFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	writeCharmYAML(t, dir, "app_mode: \"staging\"\n")
	t.Setenv("CHARM_ROOT", dir)

	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for app_mode staging")
	}
}

type stubResolver struct{ val string }

func (s stubResolver) Resolve(_ context.Context, _ string) (string, error) {
	return s.val, nil
}

func TestLoad_SecretReference(t *testing.T) {
	t.Setenv("CHARM_ROOT", t.TempDir())
	t.Setenv("CHARM_ADMIN_PASSWORD", "vault:secret/grafana#admin")

	SetSecretResolver(stubResolver{val: "from-vault"})
	defer SetSecretResolver(nil)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AdminPassword != "from-vault" || cfg.PasswordGenerated {
		t.Fatalf("secret not resolved: %+v", cfg)
	}
}

func TestLoad_SecretReferenceWithoutResolver(t *testing.T) {
	t.Setenv("CHARM_ROOT", t.TempDir())
	t.Setenv("CHARM_ADMIN_PASSWORD", "vault:secret/grafana#admin")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when no resolver is installed")
	}
}
