// internal/grafana/ini.go
//
// grafana.ini rendering.
//
// Context
// -------
// The provisioner owns /etc/grafana/grafana.ini.  WriteINI renders the
// managed template from a Resolved config and reports whether the file
// actually changed, so the caller can skip a service restart when a
// config-changed event touched nothing Grafana cares about.
//
// Notes
// -----
// • The file is written 0640: it can carry the admin password section.
// • Oxford commas, two spaces after periods.

package grafana

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/charmkit/grafana/internal/config"
)

// DefaultINIPath is where the Grafana deb expects its configuration.
const DefaultINIPath = "/etc/grafana/grafana.ini"

const iniTemplate = `# Managed by the grafana charm agent.  Manual edits will be overwritten.
app_mode = {{ .AppMode }}

[server]
http_port = {{ .Port }}

[auth.anonymous]
enabled = {{ .Anonymous }}
org_role = {{ .AnonymousRole }}
`

var iniTmpl = template.Must(template.New("grafana.ini").Parse(iniTemplate))

// WriteINI renders grafana.ini for cfg at path, creating parent
// directories as needed.  The changed result is true when the rendered
// bytes differ from what is on disk.
func WriteINI(path string, cfg *config.Resolved) (changed bool, err error) {
	var buf bytes.Buffer
	if err := iniTmpl.Execute(&buf, cfg); err != nil {
		return false, fmt.Errorf("render grafana.ini: %w", err)
	}

	if prev, err := os.ReadFile(path); err == nil && bytes.Equal(prev, buf.Bytes()) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o640); err != nil {
		return false, fmt.Errorf("write grafana.ini: %w", err)
	}
	return true, nil
}
