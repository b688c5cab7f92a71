// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Resolved` from three layers (highest
precedence last):

  1. Declared option defaults (Defaults()).
  2. Optional `conf/charm.yaml` — the orchestrator-rendered option file.
  3. Environment variables prefixed `CHARM_`
     (e.g., `CHARM_APP_MODE → app_mode`).

After merging, the tree is unmarshalled into the string-typed Raw,
secret references are resolved through Vault, and Resolve() performs
the full validation.  The result is cached in an `atomic.Pointer` for
lock-free reads; `Reload()` runs the pipeline again and swaps the
pointer, which is exactly what the SIGHUP (config-changed) path does.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, unmarshal, secret resolution, validation.
  • INFO  span  — final "config loaded" with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot
    issues surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/charm.yaml`,
    so `go run ./cmd/charmd` works from any sub-directory.
  • A missing charm.yaml is not an error; defaults plus environment
    overrides are a complete configuration.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/charmkit/grafana/internal/metrics"
	"github.com/charmkit/grafana/internal/secrets"
)

var current atomic.Pointer[Resolved]

// secretResolver handles vault: references in secret-valued options.
// Installed once during boot, before the first Load.
var secretResolver secrets.Resolver

// SetSecretResolver installs the resolver used for `vault:` option
// values.  A nil resolver (the default) makes such values an error.
func SetSecretResolver(r secrets.Resolver) { secretResolver = r }

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves CHARM_ROOT or climbs directories until conf/charm.yaml
// is found.  Falls back to the executable heuristic for the installed
// layout.
func rootDir() string {
	if r := os.Getenv("CHARM_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "charm.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges defaults, YAML, and env overrides, resolves secrets,
// validates, and caches the Resolved.
func Load() (*Resolved, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, err
	}

	yamlPath := filepath.Join(root, "conf", "charm.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			metrics.ConfigLoadErrorsTotal.Inc()
			return nil, err
		}
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	} else {
		zap.S().Debugw("no charm.yaml, using defaults", "file", yamlPath)
	}

	// Env overrides: CHARM_APP_MODE → app_mode.
	if err := k.Load(env.Provider("CHARM_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CHARM_"))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		metrics.ConfigLoadErrorsTotal.Inc()
		return nil, err
	}

	var raw Raw
	if err := k.Unmarshal("", &raw); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		metrics.ConfigLoadErrorsTotal.Inc()
		return nil, err
	}

	if secrets.IsRef(raw.AdminPassword) {
		val, err := resolveSecret(raw.AdminPassword)
		if err != nil {
			zap.S().Errorw("admin_password secret resolution failed", "err", err)
			metrics.ConfigLoadErrorsTotal.Inc()
			return nil, err
		}
		raw.AdminPassword = val
	}

	cfg, err := Resolve(raw)
	if err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		metrics.ConfigValidationErrorsTotal.Inc()
		return nil, err
	}

	current.Store(cfg)
	metrics.ConfigReloadTotal.Inc()
	zap.S().Infow("config loaded",
		"app_mode", cfg.AppMode,
		"port", cfg.Port,
		"install_file", cfg.Install.FromFile(),
		"repos", len(cfg.Install.Repos),
		"datasources", len(cfg.Datasources),
		"dashboards", len(cfg.Dashboards),
	)
	return cfg, nil
}

// resolveSecret turns a vault: reference into its literal value.
func resolveSecret(ref string) (string, error) {
	if secretResolver == nil {
		return "", errNoResolver
	}
	return secretResolver.Resolve(context.Background(), ref)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Resolved { return current.Load() }
func Reload() error  { _, err := Load(); return err }

// defaultsMap flattens Defaults() for the koanf confmap provider.
func defaultsMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"install_sources":      d.InstallSources,
		"install_keys":         d.InstallKeys,
		"install_file":         d.InstallFile,
		"app_mode":             d.AppMode,
		"anonymous":            d.Anonymous,
		"anonymous_role":       d.AnonymousRole,
		"datasources":          d.Datasources,
		"default_dashboards":   d.DefaultDashboards,
		"nagios_context":       d.NagiosContext,
		"nagios_servicegroups": d.NagiosServicegroups,
		"port":                 d.Port,
		"admin_password":       d.AdminPassword,
	}
}
