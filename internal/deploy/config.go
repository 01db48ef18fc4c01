package deploy

import (
	"fmt"
	"net/mail"
	"net/netip"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultBaseDir  = "/opt/n8n"
	defaultTimezone = "UTC"

	appImage   = "n8nio/n8n:latest"
	proxyImage = "traefik:v3.1"

	appPort      = 5678
	healthPath   = "/healthz"
	certResolver = "letsencrypt"
)

// Config holds everything the renderer needs. It is populated once per run,
// from prompts and flags, and never mutated afterwards.
type Config struct {
	Domain       string
	Email        string
	AuthUser     string
	AuthPassword string // plaintext; embedded in the env file only, never logged
	AuthHash     string // bcrypt htpasswd entry, computed once at collect time
	Allowlist    []netip.Prefix
	Timezone     string
}

// ConfigError reports a rejected input field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var domainRe = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)

// Validate checks every field once, at the boundary. Rendered artifacts may
// assume a validated Config.
func (c Config) Validate() error {
	if !domainRe.MatchString(strings.ToLower(c.Domain)) {
		return &ConfigError{Field: "domain", Reason: fmt.Sprintf("%q is not a valid hostname", c.Domain)}
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return &ConfigError{Field: "email", Reason: fmt.Sprintf("%q is not a valid address", c.Email)}
	}
	if strings.TrimSpace(c.AuthUser) == "" {
		return &ConfigError{Field: "username", Reason: "must not be empty"}
	}
	if strings.Contains(c.AuthUser, ":") {
		return &ConfigError{Field: "username", Reason: "must not contain ':'"}
	}
	if c.AuthPassword == "" {
		return &ConfigError{Field: "password", Reason: "must not be empty"}
	}
	if c.AuthHash == "" {
		return &ConfigError{Field: "password", Reason: "credential hash missing"}
	}
	return nil
}

// ParseAllowlist turns the comma-separated prompt answer into one prefix per
// entry. Bare addresses become single-host prefixes. An empty answer means no
// IP filtering at all.
func ParseAllowlist(s string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p, err := netip.ParsePrefix(part); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, &ConfigError{Field: "allowlist", Reason: fmt.Sprintf("%q is neither an IP nor a CIDR", part)}
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// Settings are the installer's own knobs, overridable via N8N_DEPLOY_*
// environment variables.
type Settings struct {
	BaseDir  string
	Timezone string
}

func LoadSettings() Settings {
	v := viper.New()
	v.SetEnvPrefix("N8N_DEPLOY")
	v.AutomaticEnv()
	v.SetDefault("base_dir", defaultBaseDir)
	v.SetDefault("timezone", defaultTimezone)
	return Settings{
		BaseDir:  v.GetString("base_dir"),
		Timezone: v.GetString("timezone"),
	}
}
