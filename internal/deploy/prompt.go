package deploy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter collects a Config interactively. Fields already set (for example
// from flags) are not asked for again.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// ReadPassword reads a secret without echo. Defaults to the terminal
	// reader; tests replace it.
	ReadPassword func() (string, error)
}

func NewPrompter() *Prompter {
	return &Prompter{
		In:  os.Stdin,
		Out: os.Stdout,
		ReadPassword: func() (string, error) {
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return strings.TrimSpace(string(b)), nil
		},
	}
}

// Collect fills the missing fields of cfg, hashes the credential once and
// validates the result.
func (p *Prompter) Collect(cfg *Config, settings Settings) error {
	r := bufio.NewReader(p.In)

	if cfg.Timezone == "" {
		cfg.Timezone = settings.Timezone
	}
	var err error
	if cfg.Domain == "" {
		if cfg.Domain, err = p.ask(r, "Domain (e.g. n8n.example.com)"); err != nil {
			return err
		}
	}
	if cfg.Email == "" {
		if cfg.Email, err = p.ask(r, "Contact email for TLS certificates"); err != nil {
			return err
		}
	}
	if cfg.AuthUser == "" {
		if cfg.AuthUser, err = p.ask(r, "Basic-auth username"); err != nil {
			return err
		}
	}
	if cfg.AuthPassword == "" {
		fmt.Fprint(p.Out, "Basic-auth password: ")
		if cfg.AuthPassword, err = p.ReadPassword(); err != nil {
			return err
		}
		fmt.Fprintln(p.Out)
	}
	if cfg.Allowlist == nil {
		answer, err := p.ask(r, "Allowed IPs/CIDRs, comma-separated (empty for no restriction)")
		if err != nil {
			return err
		}
		if cfg.Allowlist, err = ParseAllowlist(answer); err != nil {
			return err
		}
	}

	if cfg.AuthHash == "" {
		if cfg.AuthHash, err = HtpasswdEntry(cfg.AuthUser, cfg.AuthPassword); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func (p *Prompter) ask(r *bufio.Reader, label string) (string, error) {
	fmt.Fprintf(p.Out, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
