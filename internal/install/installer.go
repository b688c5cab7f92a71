// internal/install/installer.go
//
// Grafana package installation.
//
// Context
// -------
// The installer consumes a validated InstallSpec and makes the grafana
// package present on the unit.  Repository installs register the apt
// source/key pairs and apt-get the package; file installs download the
// named deb and hand it to dpkg (download.go).  Source strings are
// passed to apt verbatim: apt owns their syntax, and its errors
// propagate opaquely, exactly as the network and GPG failures of the
// original toolchain did.
//
// Notes
// -----
// • All commands go through an injectable runner for tests.
// • Oxford commas, two spaces after periods.

package install

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/charmkit/grafana/internal/config"
)

const (
	// DefaultSourcesPath is the apt sources fragment the charm owns.
	DefaultSourcesPath = "/etc/apt/sources.list.d/grafana.list"

	packageName = "grafana"
	keyserver   = "hkp://keyserver.ubuntu.com:80"
)

// debDeps are packages the Grafana deb needs but does not declare on
// all series.
var debDeps = []string{"libfontconfig1"}

// Installer applies an InstallSpec to the unit.
type Installer struct {
	run func(ctx context.Context, name string, arg ...string) ([]byte, error)

	// SourcesPath and DownloadDir default to the system locations and
	// are overridable in tests.
	SourcesPath string
	DownloadDir string
}

// New returns an Installer backed by exec.CommandContext.
func New() *Installer {
	return &Installer{
		run: func(ctx context.Context, name string, arg ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, arg...).CombinedOutput()
		},
		SourcesPath: DefaultSourcesPath,
		DownloadDir: os.TempDir(),
	}
}

// Ensure installs Grafana per spec.  Safe to call on every
// config-changed event; apt and dpkg are no-ops when nothing changed.
func (i *Installer) Ensure(ctx context.Context, spec config.InstallSpec) error {
	if spec.FromFile() {
		return i.installFromFile(ctx, spec.File)
	}
	return i.installFromRepos(ctx, spec.Repos)
}

//
// repository install
//

func (i *Installer) installFromRepos(ctx context.Context, repos []config.Repo) error {
	changed, err := i.writeSources(repos)
	if err != nil {
		return err
	}

	if changed {
		for _, r := range repos {
			if r.Key == "" {
				continue
			}
			if out, err := i.run(ctx, "apt-key", "adv", "--keyserver", keyserver, "--recv-keys", r.Key); err != nil {
				return fmt.Errorf("import key %s: %w: %s", r.Key, err, out)
			}
		}
		if out, err := i.run(ctx, "apt-get", "update", "-q"); err != nil {
			return fmt.Errorf("apt-get update: %w: %s", err, out)
		}
	}

	zap.S().Infow("installing package", "package", packageName, "repos", len(repos))
	if out, err := i.run(ctx, "apt-get", "install", "-qy", packageName); err != nil {
		return fmt.Errorf("apt-get install %s: %w: %s", packageName, err, out)
	}
	return nil
}

// writeSources renders the charm-owned sources fragment and reports
// whether it changed on disk.
func (i *Installer) writeSources(repos []config.Repo) (changed bool, err error) {
	var buf bytes.Buffer
	buf.WriteString("# Managed by the grafana charm agent.\n")
	for _, r := range repos {
		buf.WriteString(r.Source)
		buf.WriteByte('\n')
	}

	if prev, err := os.ReadFile(i.SourcesPath); err == nil && bytes.Equal(prev, buf.Bytes()) {
		return false, nil
	}

	if err := os.WriteFile(i.SourcesPath, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", i.SourcesPath, err)
	}
	return true, nil
}
