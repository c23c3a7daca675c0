package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadManifest_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugin.json", `{
		"name": "git-status",
		"version": "1.2.0",
		"description": "Shows git status",
		"main": "status.lua",
		"dependencies": ["git-core"]
	}`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Name != "git-status" {
		t.Errorf("Name = %q, want %q", m.Name, "git-status")
	}
	if m.Version != "1.2.0" {
		t.Errorf("Version = %q, want %q", m.Version, "1.2.0")
	}
	if m.Main != "status.lua" {
		t.Errorf("Main = %q, want %q", m.Main, "status.lua")
	}
	if len(m.Dependencies) != 1 || m.Dependencies[0] != "git-core" {
		t.Errorf("Dependencies = %v, want [git-core]", m.Dependencies)
	}
	if m.Path() != dir {
		t.Errorf("Path() = %q, want %q", m.Path(), dir)
	}
	if want := filepath.Join(dir, "status.lua"); m.MainPath() != want {
		t.Errorf("MainPath() = %q, want %q", m.MainPath(), want)
	}
}

func TestLoadManifest_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugin.yaml", "name: hello\nversion: 0.1.0\n")

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Name != "hello" {
		t.Errorf("Name = %q, want %q", m.Name, "hello")
	}
	// Defaults apply for omitted fields.
	if m.Main != "init.lua" {
		t.Errorf("Main = %q, want default init.lua", m.Main)
	}
}

func TestLoadManifest_UnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugin.txt", "name: nope")

	if _, err := LoadManifest(path); !errors.Is(err, ErrUnknownManifestFormat) {
		t.Errorf("LoadManifest() error = %v, want ErrUnknownManifestFormat", err)
	}
}

func TestLoadManifest_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugin.json", "{not json")

	if _, err := LoadManifest(path); err == nil {
		t.Error("LoadManifest() error = nil for malformed JSON")
	}
}

func TestLoadManifestFromDir_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plugin.json", `{"name": "from-json", "version": "1.0.0"}`)
	writeFile(t, dir, "plugin.yaml", "name: from-yaml\nversion: 1.0.0\n")

	m, err := LoadManifestFromDir(dir)
	if err != nil {
		t.Fatalf("LoadManifestFromDir() error = %v", err)
	}
	if m.Name != "from-json" {
		t.Errorf("Name = %q, want json to win", m.Name)
	}
}

func TestLoadManifestFromDir_Empty(t *testing.T) {
	if _, err := LoadManifestFromDir(t.TempDir()); !errors.Is(err, ErrNoEntryPoint) {
		t.Errorf("LoadManifestFromDir() error = %v, want ErrNoEntryPoint", err)
	}
}

func TestManifest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		wantErr  error
	}{
		{"valid", Manifest{Name: "good-name", Version: "1.0.0", Main: "init.lua"}, nil},
		{"single letter", Manifest{Name: "a", Version: "1.0.0"}, nil},
		{"prerelease version", Manifest{Name: "ok", Version: "1.0.0-beta.1"}, nil},
		{"missing name", Manifest{Version: "1.0.0"}, ErrMissingName},
		{"uppercase name", Manifest{Name: "BadName", Version: "1.0.0"}, ErrInvalidName},
		{"trailing hyphen", Manifest{Name: "bad-", Version: "1.0.0"}, ErrInvalidName},
		{"bad version", Manifest{Name: "ok", Version: "one"}, ErrInvalidVersion},
		{"non-lua main", Manifest{Name: "ok", Version: "1.0.0", Main: "init.py"}, ErrInvalidMain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifest_String(t *testing.T) {
	m := Manifest{Name: "hello", Version: "2.0.0"}
	if got := m.String(); got != "hello v2.0.0" {
		t.Errorf("String() = %q, want %q", got, "hello v2.0.0")
	}
}
