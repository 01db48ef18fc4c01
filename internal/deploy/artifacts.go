package deploy

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact is one rendered configuration file.
type Artifact struct {
	Path    string
	Content []byte
	Mode    os.FileMode
}

// WriteArtifacts writes every artifact, overwriting prior versions. Files
// whose content is already identical are only re-chmodded, so a re-run of an
// unchanged install touches nothing.
func WriteArtifacts(artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := writeArtifact(a); err != nil {
			return fmt.Errorf("write %s: %w", a.Path, err)
		}
	}
	return nil
}

func writeArtifact(a Artifact) error {
	if err := ensureDir(filepath.Dir(a.Path), 0o750); err != nil {
		return err
	}
	old, err := os.ReadFile(a.Path)
	if err == nil && sha256.Sum256(old) == sha256.Sum256(a.Content) {
		return os.Chmod(a.Path, a.Mode)
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.WriteFile(a.Path, a.Content, a.Mode); err != nil {
		return err
	}
	return os.Chmod(a.Path, a.Mode)
}
