package run

import (
	"os"
	"os/exec"
	"strings"
)

// Runner is the host-mutation boundary. Everything that shells out to the
// package manager, docker, systemctl or crontab goes through it, so the
// rendering and validation logic can be tested without root or a network.
type Runner interface {
	// Stream runs a command with stdout/stderr attached to the caller's.
	Stream(name string, args ...string) error
	// Capture runs a command and returns its combined output.
	Capture(name string, args ...string) (string, error)
	// Feed runs a command with the given string piped to its stdin.
	Feed(input string, name string, args ...string) error
	// LookPath reports whether a binary is on PATH.
	LookPath(name string) error
}

type ExecRunner struct{}

func (ExecRunner) Stream(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (ExecRunner) Capture(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (ExecRunner) Feed(input string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (ExecRunner) LookPath(name string) error {
	_, err := exec.LookPath(name)
	return err
}
