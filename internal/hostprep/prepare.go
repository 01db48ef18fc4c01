package hostprep

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/run"
)

// Preparer ensures the container runtime and compose tooling exist on the
// host. Installation mutates global package state and has no uninstall path;
// presence checks keep re-runs from reinstalling.
type Preparer struct {
	Runner run.Runner
	Log    *zap.Logger
}

// RequireRoot fails before any mutation when the process lacks the privilege
// the later steps need.
func RequireRoot() error {
	if os.Geteuid() != 0 {
		return errors.New("must be run as root (package installation, /etc/systemd and the root crontab are touched)")
	}
	return nil
}

// EnsureDocker installs the docker engine and the compose plugin if either is
// missing, then makes sure the daemon service is enabled and running.
func (p *Preparer) EnsureDocker() error {
	if p.Runner.LookPath("docker") != nil {
		p.Log.Info("docker not found, installing engine")
		if err := p.Runner.Stream("sh", "-c", "curl -fsSL https://get.docker.com | sh"); err != nil {
			return fmt.Errorf("install docker engine: %w", err)
		}
	} else {
		p.Log.Info("docker already installed")
	}

	if _, err := p.Runner.Capture("docker", "compose", "version"); err != nil {
		p.Log.Info("compose plugin not found, installing")
		if err := p.Runner.Stream("apt-get", "update"); err != nil {
			return fmt.Errorf("apt-get update: %w", err)
		}
		if err := p.Runner.Stream("apt-get", "install", "-y", "docker-compose-plugin"); err != nil {
			return fmt.Errorf("install compose plugin: %w", err)
		}
	} else {
		p.Log.Info("compose plugin already installed")
	}

	if err := p.Runner.Stream("systemctl", "enable", "--now", "docker"); err != nil {
		return fmt.Errorf("enable docker service: %w", err)
	}
	return nil
}
