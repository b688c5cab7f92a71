// internal/grafana/dashboards.go
//
// Default dashboard fetching.
//
// Context
// -------
// The default_dashboards option names dashboard JSON documents by URL.
// Each one is downloaded into Grafana's dashboards directory, where the
// server's file reader picks it up.  Entries that are not downloadable
// URLs are skipped with a warning rather than failing the whole pass;
// a later config-changed event can correct them independently.

package grafana

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/melbahja/got"
	"go.uber.org/zap"
)

// DefaultDashboardDir is where the Grafana deb reads file-based
// dashboards from.
const DefaultDashboardDir = "/var/lib/grafana/dashboards"

// FetchDashboards downloads every dashboard entry into dir.
func FetchDashboards(ctx context.Context, entries []string, dir string) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, entry := range entries {
		u, err := url.ParseRequestURI(entry)
		if err != nil || u.Host == "" {
			zap.S().Warnw("skipping non-URL dashboard entry", "entry", entry)
			continue
		}

		dest := filepath.Join(dir, dashboardFileName(u))
		dl := got.NewDownload(ctx, entry, dest)
		if err := dl.Init(); err != nil {
			return fmt.Errorf("dashboard %s: %w", entry, err)
		}
		if err := dl.Start(); err != nil {
			return fmt.Errorf("dashboard %s: %w", entry, err)
		}
		zap.S().Infow("dashboard fetched", "url", entry, "dest", dest)
	}
	return nil
}

// dashboardFileName derives a stable on-disk name from the URL path.
func dashboardFileName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = u.Host
	}
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return name
}
