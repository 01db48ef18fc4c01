// Package stack brings the rendered compose project up and registers it with
// systemd so it survives reboots. Health checking and restarts are the
// runtime's job; nothing here waits for the services to become healthy.
package stack

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/deploy"
	"github.com/mohamedamjad/n8n-deploy/internal/run"
)

const unitName = "n8n.service"

type Launcher struct {
	Runner run.Runner
	Layout deploy.Layout
	Log    *zap.Logger
}

func (l *Launcher) composeArgs(rest ...string) []string {
	args := []string{
		"compose",
		"-f", filepath.Join(l.Layout.BaseDir, "docker-compose.yml"),
	}
	return append(args, rest...)
}

// Up pulls current images and starts the stack detached.
func (l *Launcher) Up() error {
	if err := l.Runner.Stream("docker", l.composeArgs("pull", "--quiet")...); err != nil {
		return fmt.Errorf("compose pull: %w", err)
	}
	if err := l.Runner.Stream("docker", l.composeArgs("up", "-d", "--remove-orphans")...); err != nil {
		return fmt.Errorf("compose up: %w", err)
	}
	l.Log.Info("stack started", zap.String("dir", l.Layout.BaseDir))
	return nil
}

// Down stops the stack.
func (l *Launcher) Down() error {
	if err := l.Runner.Stream("docker", l.composeArgs("down")...); err != nil {
		return fmt.Errorf("compose down: %w", err)
	}
	return nil
}

// InstallUnit copies the rendered unit into systemd's directory and enables
// it, so the init system supervises the stack across reboots.
func (l *Launcher) InstallUnit() error {
	src := filepath.Join(l.Layout.BaseDir, unitName)
	b, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read rendered unit: %w", err)
	}
	dst := filepath.Join("/etc/systemd/system", unitName)
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return fmt.Errorf("install unit: %w", err)
	}
	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", unitName},
		{"start", unitName},
	} {
		if err := l.Runner.Stream("systemctl", args...); err != nil {
			return fmt.Errorf("systemctl %s: %w", args[0], err)
		}
	}
	l.Log.Info("unit enabled", zap.String("unit", unitName))
	return nil
}

// DisableUnit stops supervision, leaving the unit file in place.
func (l *Launcher) DisableUnit() error {
	if err := l.Runner.Stream("systemctl", "disable", "--now", unitName); err != nil {
		return fmt.Errorf("systemctl disable: %w", err)
	}
	return nil
}
