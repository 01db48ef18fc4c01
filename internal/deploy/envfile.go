package deploy

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ReadEnvFile parses a KEY=VALUE env file, skipping blanks and comments.
func ReadEnvFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	vars := map[string]string{}
	s := bufio.NewScanner(file)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		k := strings.TrimSpace(parts[0])
		v := strings.Trim(strings.TrimSpace(parts[1]), "\"")
		vars[k] = v
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// HydrateFromEnvFile fills the password back in from a previously rendered
// env file, so re-render and status runs do not have to re-prompt for it.
func HydrateFromEnvFile(layout Layout, cfg *Config) error {
	m, err := ReadEnvFile(filepath.Join(layout.BaseDir, ".env"))
	if err != nil {
		return err
	}
	if cfg.AuthPassword == "" {
		cfg.AuthPassword = m["N8N_BASIC_AUTH_PASSWORD"]
	}
	return nil
}
