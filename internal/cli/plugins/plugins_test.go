package plugins

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindPlugin_NotFound(t *testing.T) {
	t.Setenv(DirEnv, t.TempDir())

	_, err := FindPlugin("nonexistent-plugin-xyz")
	if err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestFindPlugin_RejectsPaths(t *testing.T) {
	for _, name := range []string{"", "../clean", `a\b`} {
		if _, err := FindPlugin(name); err != ErrPluginNotFound {
			t.Errorf("FindPlugin(%q) = %v, want ErrPluginNotFound", name, err)
		}
	}
}

func TestFindPlugin_InPluginDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DirEnv, dir)

	pluginPath := filepath.Join(dir, "fieldnotes-testplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\necho test"), 0o755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	found, err := FindPlugin("testplugin")
	if err != nil {
		t.Fatalf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestFindPlugin_InHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(DirEnv, "")

	pluginsDir := filepath.Join(home, ".fieldnotes", "plugins")
	if err := os.MkdirAll(pluginsDir, 0o755); err != nil {
		t.Fatalf("failed to create plugins dir: %v", err)
	}
	pluginPath := filepath.Join(pluginsDir, "fieldnotes-homeplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\necho test"), 0o755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	found, err := FindPlugin("homeplugin")
	if err != nil {
		t.Fatalf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestExecute_ExitCode(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fieldnotes-exit3")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0o755); err != nil {
		t.Fatalf("failed to create script: %v", err)
	}

	if code := Execute(context.Background(), script, nil); code != 3 {
		t.Errorf("Execute() = %d, want 3", code)
	}
	if code := Execute(context.Background(), filepath.Join(dir, "missing"), nil); code != 2 {
		t.Errorf("Execute() on missing binary = %d, want 2", code)
	}
}

func TestFormatNotFoundError_KnownPlugin(t *testing.T) {
	err := FormatNotFoundError("plot")

	if !strings.Contains(err, "is available as a plugin") {
		t.Error("expected error to mention plugin availability")
	}
	if !strings.Contains(err, "fieldnotes-plot") {
		t.Error("expected error to mention fieldnotes-plot")
	}
}

func TestFormatNotFoundError_UnknownPlugin(t *testing.T) {
	err := FormatNotFoundError("unknown")

	if !strings.Contains(err, "fieldnotes-unknown") {
		t.Error("expected error to mention fieldnotes-unknown")
	}
	if strings.Contains(err, "is available as a plugin") {
		t.Error("should not mention plugin availability for unknown plugins")
	}
	if !strings.Contains(err, DirEnv) {
		t.Errorf("expected error to mention %s", DirEnv)
	}
}

func TestIsExecutable(t *testing.T) {
	tmpDir := t.TempDir()

	nonExec := filepath.Join(tmpDir, "nonexec")
	if err := os.WriteFile(nonExec, []byte("test"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if isExecutable(nonExec) {
		t.Error("non-executable file should not be detected as executable")
	}

	execPath := filepath.Join(tmpDir, "exec")
	if err := os.WriteFile(execPath, []byte("test"), 0o755); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if !isExecutable(execPath) {
		t.Error("executable file should be detected as executable")
	}

	if isExecutable(tmpDir) {
		t.Error("directory should not be detected as executable")
	}
	if isExecutable(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("non-existent file should not be detected as executable")
	}
}
