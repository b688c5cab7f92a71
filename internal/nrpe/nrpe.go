// internal/nrpe/nrpe.go
//
// Nagios NRPE check registration.
//
// Context
// -------
// When a monitoring relation is present the charm registers a service
// check for grafana-server: an NRPE command definition on the unit, and
// an exported nagios service definition named by nagios_context and
// grouped by nagios_servicegroups.  When the relation goes away the
// same files are wiped.
//
// Notes
// -----
// • File names follow the nagios-charm convention
//   (`service__<host>_grafana-server.cfg`), so the master picks them up
//   unchanged.
// • Oxford commas, two spaces after periods.

package nrpe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"go.uber.org/zap"
)

// Default system locations.
const (
	DefaultCheckDir  = "/etc/nagios/nrpe.d"
	DefaultExportDir = "/var/lib/nagios/export"
)

const checkName = "check_grafana-server"

const checkDef = `# Managed by the grafana charm agent.
command[check_grafana-server]=/usr/local/lib/nagios/plugins/check_systemd.py grafana-server
`

var serviceTmpl = template.Must(template.New("service").Parse(
	`# Managed by the grafana charm agent.
define service {
    use                     active-service
    host_name               {{ .Host }}
    service_description     {{ .Host }}[grafana-server] Verify grafana-server is up
    check_command           check_nrpe!check_grafana-server
    servicegroups           {{ .Servicegroups }}
}
`))

// Config names everything needed to register or wipe the check.
type Config struct {
	CheckDir      string
	ExportDir     string
	Context       string // nagios_context option
	Servicegroups string // nagios_servicegroups option
	Unit          string // unit name, e.g. "grafana-0"
}

// host is the nagios host name: "<context>-<unit>".
func (c Config) host() string { return c.Context + "-" + c.Unit }

// Write registers the NRPE command and the exported service definition.
func (c Config) Write() error {
	for _, dir := range []string{c.CheckDir, c.ExportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	checkPath := filepath.Join(c.CheckDir, checkName+".cfg")
	if err := os.WriteFile(checkPath, []byte(checkDef), 0o644); err != nil {
		return fmt.Errorf("write nrpe check: %w", err)
	}

	var buf bytes.Buffer
	if err := serviceTmpl.Execute(&buf, struct {
		Host          string
		Servicegroups string
	}{c.host(), c.Servicegroups}); err != nil {
		return fmt.Errorf("render nagios service: %w", err)
	}

	exportPath := filepath.Join(c.ExportDir, fmt.Sprintf("service__%s_grafana-server.cfg", c.host()))
	if err := os.WriteFile(exportPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write nagios export: %w", err)
	}

	zap.S().Infow("nrpe check registered", "host", c.host(), "servicegroups", c.Servicegroups)
	return nil
}

// Wipe removes the NRPE command and any exported service definitions
// for grafana-server, regardless of the context they were written
// under.
func (c Config) Wipe() error {
	patterns := []string{
		filepath.Join(c.CheckDir, checkName+".cfg"),
		filepath.Join(c.ExportDir, "service__*_grafana-server.cfg"),
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}
