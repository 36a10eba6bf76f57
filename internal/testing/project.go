package testing

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/teranos/libref/config"
)

// WriteFile writes content to dir/rel, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// UnpackProject extracts a txtar archive into a temporary directory,
// appends extraConfig to its libref.toml, changes into the directory and
// loads the configuration from libref.toml alone.
func UnpackProject(t *testing.T, archive, extraConfig string) *config.Config {
	t.Helper()

	ar, err := txtar.ParseFile(archive)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", archive, err)
	}

	dir := t.TempDir()
	for _, f := range ar.Files {
		data := string(f.Data)
		if f.Name == config.ProjectConfigName {
			data += extraConfig
		}
		WriteFile(t, dir, f.Name, data)
	}
	t.Chdir(dir)

	cfg, err := config.LoadFromFile(config.ProjectConfigName)
	if err != nil {
		t.Fatalf("Failed to load project config: %v", err)
	}
	return cfg
}
