// cmd/charmd/main.go
//
// Grafana charm agent – entry point.
//
// Event life-cycle
// ----------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Install the Vault secret resolver when VAULT_ADDR is present.
//
//  4. Load and validate the charm configuration (config.Load).
//
//  5. Run one install-and-provision pass: apt/deb install, grafana.ini
//     render, admin user and datasource upserts, dashboard fetch,
//     service start/restart, port bookkeeping, NRPE registration.
//
//  6. Serve /healthz and /metrics on the admin port, and re-run the
//     pipeline on SIGHUP — the config-changed event of this runtime.
//
// Large comment blocks are framed by blank “//” lines; inline comments
// use a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/charmkit/grafana/internal/config"
	"github.com/charmkit/grafana/internal/database"
	"github.com/charmkit/grafana/internal/grafana"
	"github.com/charmkit/grafana/internal/install"
	"github.com/charmkit/grafana/internal/logger"
	"github.com/charmkit/grafana/internal/metrics"
	"github.com/charmkit/grafana/internal/nrpe"
	"github.com/charmkit/grafana/internal/secrets"
	"github.com/charmkit/grafana/internal/server"
	"github.com/charmkit/grafana/internal/unitdata"
)

const (
	serverEnvPath = "/usr/local/etc/grafana-charm/charm.env"
	adminAddr     = ":9116"
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Secret resolver (optional) ──────────────────────────────────
	//
	if os.Getenv("VAULT_ADDR") != "" {
		resolver, err := secrets.NewVaultResolver()
		if err != nil {
			logOut.Fatalw("vault resolver init failed", "err", err)
		}
		config.SetSecretResolver(resolver)
		logOut.Infow("vault secret resolver online")
	}

	//
	// ── 2.  First config load and validate ─────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalw("configuration rejected", "err", err)
	}

	//
	// ── 3.  Unit state store ────────────────────────────────────────────
	//
	stateDB, err := database.Open(filepath.Join(rootDir, "unitdata.db"))
	if err != nil {
		logOut.Fatalw("open unit state", "err", err)
	}
	defer stateDB.Close()

	kv, err := unitdata.New(stateDB)
	if err != nil {
		logOut.Fatalw("init unit state", "err", err)
	}

	ag := &agent{
		installer:  install.New(),
		supervisor: grafana.NewSupervisor(),
		kv:         kv,
		iniPath:    grafana.DefaultINIPath,
		dbPath:     grafana.DefaultDBPath,
	}

	//
	// ── 4.  Initial install-and-provision pass ──────────────────────────
	//
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ag.provision(ctx, cfg); err != nil {
		logOut.Fatalw("initial provisioning failed", "err", err)
	}

	//
	// ── 5.  Admin endpoint plus config-changed (SIGHUP) loop ───────────
	//
	srv := server.New(adminAddr, server.Router())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logOut.Infow("admin endpoint listening", "addr", adminAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				logOut.Infow("config-changed signal received")
				cfg, err := config.Load()
				if err != nil {
					// Recoverable: operator fixes the option, sends
					// another SIGHUP.  Keep serving the old config.
					logOut.Errorw("configuration rejected, keeping previous", "err", err)
					continue
				}
				if err := ag.provision(ctx, cfg); err != nil {
					logOut.Errorw("re-provisioning failed", "err", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalw("agent stopped", "err", err)
	}
	logOut.Infow("agent shut down cleanly")
}

//
// agent bundles the provisioning collaborators.
//

type agent struct {
	installer  *install.Installer
	supervisor *grafana.Supervisor
	kv         *unitdata.Store
	iniPath    string
	dbPath     string
}

// provision runs one full install-and-provision pass for cfg.
func (a *agent) provision(ctx context.Context, cfg *config.Resolved) error {
	start := time.Now()
	err := a.provisionOnce(ctx, cfg)
	metrics.ProvisionDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProvisionErrorsTotal.Inc()
	}
	return err
}

func (a *agent) provisionOnce(ctx context.Context, cfg *config.Resolved) error {
	//
	// Package install.
	//
	if err := a.installer.Ensure(ctx, cfg.Install); err != nil {
		return err
	}

	//
	// Admin password: a generated one is minted once per unit, then
	// reused across reconfigurations.
	//
	password := cfg.AdminPassword
	if cfg.PasswordGenerated {
		if prev, ok, err := a.kv.Get(unitdata.KeyAdminPassword); err != nil {
			return err
		} else if ok {
			password = prev
		} else if err := a.kv.Set(unitdata.KeyAdminPassword, password); err != nil {
			return err
		}
	}

	//
	// grafana.ini render, then the sqlite-side provisioning.
	//
	changed, err := grafana.WriteINI(a.iniPath, cfg)
	if err != nil {
		return err
	}

	grafanaDB, err := database.Open(a.dbPath)
	if err != nil {
		return err
	}
	store := grafana.NewStore(grafanaDB)
	if err := store.EnsureAdminUser(ctx, password, cfg.NagiosContext); err != nil {
		grafanaDB.Close()
		return err
	}
	for _, ds := range cfg.Datasources {
		if err := store.UpsertDatasource(ctx, ds); err != nil {
			grafanaDB.Close()
			return err
		}
	}
	grafanaDB.Close()

	if err := grafana.FetchDashboards(ctx, cfg.Dashboards, grafana.DefaultDashboardDir); err != nil {
		return err
	}

	//
	// Service and port bookkeeping.
	//
	if err := a.supervisor.EnsureRunning(changed); err != nil {
		return err
	}
	if prev, swapped, err := a.kv.SwapPort(cfg.Port); err != nil {
		return err
	} else if swapped {
		// The orchestrator owns firewalling; we track the change so a
		// hook wrapper can close the stale port exactly once.
		zap.S().Infow("grafana port changed", "old", prev, "new", cfg.Port)
	}

	//
	// Monitoring relation.
	//
	nc := nrpe.Config{
		CheckDir:      nrpe.DefaultCheckDir,
		ExportDir:     nrpe.DefaultExportDir,
		Context:       cfg.NagiosContext,
		Servicegroups: cfg.NagiosServicegroups,
		Unit:          unitName(),
	}
	if os.Getenv("CHARM_NRPE") == "1" {
		return nc.Write()
	}
	return nc.Wipe()
}

// unitName identifies this unit for monitoring exports.
func unitName() string {
	if u := os.Getenv("CHARM_UNIT"); u != "" {
		return u
	}
	host, err := os.Hostname()
	if err != nil {
		return "grafana-0"
	}
	return host
}
