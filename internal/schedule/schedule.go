// Package schedule manages the recurring backup and OS-patch jobs in the
// root crontab. Registration is an upsert keyed on command identity, so
// re-running the installer never duplicates entries.
package schedule

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/mohamedamjad/n8n-deploy/internal/run"
)

// Job is one crontab line: a trigger expression plus a command.
type Job struct {
	Spec    string
	Command string
}

func (j Job) line() string {
	return j.Spec + " " + j.Command
}

// DefaultJobs returns the two installed triggers: the nightly snapshot and
// the weekly OS security refresh.
func DefaultJobs(binary string) []Job {
	return []Job{
		{Spec: "0 3 * * *", Command: binary + " backup"},
		{Spec: "0 4 * * 0", Command: "apt-get update && apt-get -y upgrade"},
	}
}

type Scheduler struct {
	Runner run.Runner
}

// EnsureJobs validates every trigger expression and appends the lines that
// are not already present. A crontab line counts as present when its command
// part matches, regardless of the trigger, so changing a schedule requires
// removing the old line first.
func (s *Scheduler) EnsureJobs(jobs []Job) error {
	for _, j := range jobs {
		if _, err := cron.ParseStandard(j.Spec); err != nil {
			return fmt.Errorf("invalid trigger %q: %w", j.Spec, err)
		}
	}

	current, err := s.Runner.Capture("crontab", "-l")
	if err != nil {
		// "no crontab for root" exits non-zero but just means an empty
		// table. Anything else must abort before the write-back below
		// replaces the whole table.
		if !strings.Contains(current, "no crontab") {
			return fmt.Errorf("read crontab: %w", err)
		}
		current = ""
	}

	lines := splitLines(current)
	changed := false
	for _, j := range jobs {
		if hasCommand(lines, j.Command) {
			continue
		}
		lines = append(lines, j.line())
		changed = true
	}
	if !changed {
		return nil
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := s.Runner.Feed(content, "crontab", "-"); err != nil {
		return fmt.Errorf("install crontab: %w", err)
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// hasCommand matches on the command field of active entries only; comments
// and entries for other commands never count as present.
func hasCommand(lines []string, command string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) <= 5 {
			continue
		}
		if strings.Join(fields[5:], " ") == command {
			return true
		}
	}
	return false
}
