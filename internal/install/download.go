// internal/install/download.go
//
// Deb-file installation path.
//
// Context
// -------
// When install_file names a deb URL the repository options are ignored
// entirely: the runtime dependencies are apt-installed, the deb is
// downloaded to a temp file, and dpkg installs it.  The download uses
// got, which resumes and parallelizes ranged fetches on servers that
// support them.

package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/melbahja/got"
	"go.uber.org/zap"
)

func (i *Installer) installFromFile(ctx context.Context, debURL string) error {
	if out, err := i.run(ctx, "apt-get", append([]string{"install", "-qy"}, debDeps...)...); err != nil {
		return fmt.Errorf("install deb dependencies: %w: %s", err, out)
	}

	dest := filepath.Join(i.DownloadDir, "grafana.deb")
	zap.S().Infow("downloading deb", "url", debURL, "dest", dest)

	dl := got.NewDownload(ctx, debURL, dest)
	if err := dl.Init(); err != nil {
		return fmt.Errorf("download %s: %w", debURL, err)
	}
	if err := dl.Start(); err != nil {
		return fmt.Errorf("download %s: %w", debURL, err)
	}
	defer os.Remove(dest)

	if out, err := i.run(ctx, "dpkg", "-i", dest); err != nil {
		return fmt.Errorf("dpkg -i %s: %w: %s", dest, err, out)
	}
	return nil
}
