package deploy

import (
	"os"
	"path/filepath"
	"runtime"
)

// n8n runs as uid 1000 inside the container; the data dir must be writable
// by it.
const appUID = 1000

// Layout is the on-disk tree everything renders into. All paths derive from
// the base dir.
type Layout struct {
	BaseDir    string
	DataDir    string
	BackupDir  string
	TraefikDir string
	AcmeFile   string
}

func NewLayout(base string) Layout {
	return Layout{
		BaseDir:    base,
		DataDir:    filepath.Join(base, "data"),
		BackupDir:  filepath.Join(base, "backups"),
		TraefikDir: filepath.Join(base, "traefik"),
		AcmeFile:   filepath.Join(base, "traefik", "acme.json"),
	}
}

// Ensure creates the tree and the certificate store. Safe to re-run: existing
// directories are left alone and the acme store's owner-only mode is
// re-asserted every time, so a tampered re-run cannot leave it readable.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.BaseDir, l.DataDir, l.BackupDir, l.TraefikDir} {
		if err := ensureDir(dir, 0o750); err != nil {
			return err
		}
	}

	// The store must exist with restrictive perms before the proxy first
	// writes a private key into it.
	if _, err := os.Stat(l.AcmeFile); os.IsNotExist(err) {
		if err := os.WriteFile(l.AcmeFile, nil, 0o600); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if err := os.Chmod(l.AcmeFile, 0o600); err != nil {
		return err
	}

	if runtime.GOOS == "linux" && os.Geteuid() == 0 {
		if err := os.Chown(l.DataDir, appUID, appUID); err != nil {
			return err
		}
	}
	return nil
}

func ensureDir(path string, mode os.FileMode) error {
	return os.MkdirAll(path, mode)
}
