// Package doctor runs preflight checks. Failures are reported, never fatal:
// the operator decides whether to proceed.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mohamedamjad/n8n-deploy/internal/deploy"
	"github.com/mohamedamjad/n8n-deploy/internal/hostprep"
	"github.com/mohamedamjad/n8n-deploy/internal/run"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	mutedLine = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type check struct {
	name string
	fn   func() error
}

// Run prints one OK/WARN line per check and returns the number of warnings.
func Run(out io.Writer, runner run.Runner, layout deploy.Layout) int {
	fmt.Fprintln(out, mutedLine.Render(fmt.Sprintf("runtime: %s/%s", runtime.GOOS, runtime.GOARCH)))

	checks := []check{
		{"running as root", func() error {
			return hostprep.RequireRoot()
		}},
		{"docker binary", func() error {
			return runner.LookPath("docker")
		}},
		{"docker compose", func() error {
			_, err := runner.Capture("docker", "compose", "version")
			return err
		}},
		{"docker daemon", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hostprep.PingDaemon(ctx)
		}},
		{layout.BaseDir + " writable", func() error {
			return writableCheck(existingAncestor(layout.BaseDir))
		}},
		{"disk space >= 5GiB", func() error {
			return diskCheck(existingAncestor(layout.BaseDir), 5)
		}},
		{"ports 80/443 free", func() error {
			out, err := runner.Capture("ss", "-ltn")
			if err != nil {
				return err
			}
			if strings.Contains(out, ":80 ") || strings.Contains(out, ":443 ") {
				return fmt.Errorf("ports 80/443 already in use")
			}
			return nil
		}},
	}

	warnings := 0
	for _, c := range checks {
		if err := c.fn(); err != nil {
			warnings++
			fmt.Fprintf(out, "%s %s: %v\n", warnStyle.Render("[WARN]"), c.name, err)
		} else {
			fmt.Fprintf(out, "%s %s\n", okStyle.Render("[ OK ]"), c.name)
		}
	}
	return warnings
}

// existingAncestor walks up from path to the closest directory that already
// exists. Preflight is read-only; it must not materialize the install tree.
func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

func writableCheck(dir string) error {
	f, err := os.CreateTemp(dir, "n8n-deploy-write-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

func diskCheck(path string, minGiB uint64) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return err
	}
	free := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	if free < minGiB {
		return fmt.Errorf("free space %dGiB < %dGiB", free, minGiB)
	}
	return nil
}
