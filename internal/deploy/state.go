package deploy

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const stateFileName = "n8n-deploy.yml"

// State is the persisted, non-secret part of an install. It lets render,
// status and schedule re-run without prompting again. The plaintext password
// is deliberately absent; only the env file carries it.
type State struct {
	Domain    string   `yaml:"domain"`
	Email     string   `yaml:"email"`
	AuthUser  string   `yaml:"auth_user"`
	AuthHash  string   `yaml:"auth_hash"`
	Allowlist []string `yaml:"allowlist,omitempty"`
	Timezone  string   `yaml:"timezone"`
}

func stateFile(layout Layout) string {
	return filepath.Join(layout.BaseDir, stateFileName)
}

func SaveState(layout Layout, cfg Config) error {
	st := State{
		Domain:   cfg.Domain,
		Email:    cfg.Email,
		AuthUser: cfg.AuthUser,
		AuthHash: cfg.AuthHash,
		Timezone: cfg.Timezone,
	}
	for _, p := range cfg.Allowlist {
		st.Allowlist = append(st.Allowlist, p.String())
	}
	out, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(stateFile(layout), out, 0o600)
}

// LoadState reads the saved install back into a Config. The returned Config
// has no plaintext password, so it can render everything except a changed
// env file secret.
func LoadState(layout Layout) (Config, error) {
	b, err := os.ReadFile(stateFile(layout))
	if err != nil {
		return Config{}, err
	}
	var st State
	if err := yaml.Unmarshal(b, &st); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", stateFile(layout), err)
	}
	cfg := Config{
		Domain:   st.Domain,
		Email:    st.Email,
		AuthUser: st.AuthUser,
		AuthHash: st.AuthHash,
		Timezone: st.Timezone,
	}
	for _, s := range st.Allowlist {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: allowlist entry %q: %w", stateFile(layout), s, err)
		}
		cfg.Allowlist = append(cfg.Allowlist, p)
	}
	return cfg, nil
}
