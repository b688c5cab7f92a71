// internal/grafana/service.go
//
// grafana-server lifecycle.
//
// Context
// -------
// After install and provisioning the agent makes sure grafana-server is
// running, restarting it only when the rendered ini actually changed.
// Commands go through an injectable runner so tests never touch
// systemd.

package grafana

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// ServiceName is the systemd unit shipped by the Grafana deb.
const ServiceName = "grafana-server"

// Supervisor starts or restarts grafana-server.
type Supervisor struct {
	run func(name string, arg ...string) ([]byte, error)
}

// NewSupervisor returns a Supervisor backed by exec.Command.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		run: func(name string, arg ...string) ([]byte, error) {
			return exec.Command(name, arg...).CombinedOutput()
		},
	}
}

// EnsureRunning starts the service when stopped, and restarts it when
// configChanged is true.
func (s *Supervisor) EnsureRunning(configChanged bool) error {
	if !s.running() {
		zap.S().Infow("starting service", "service", ServiceName)
		if out, err := s.run("systemctl", "start", ServiceName); err != nil {
			return fmt.Errorf("start %s: %w: %s", ServiceName, err, out)
		}
		return nil
	}

	if configChanged {
		zap.S().Infow("restarting service, config file changed", "service", ServiceName)
		if out, err := s.run("systemctl", "restart", ServiceName); err != nil {
			return fmt.Errorf("restart %s: %w: %s", ServiceName, err, out)
		}
	}
	return nil
}

// running treats any is-active failure as "not running"; systemctl
// exits non-zero for inactive units.
func (s *Supervisor) running() bool {
	_, err := s.run("systemctl", "is-active", "--quiet", ServiceName)
	return err == nil
}
