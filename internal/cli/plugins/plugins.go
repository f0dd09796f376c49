// Package plugins provides exec-based plugin support for fieldnotes.
// Plugins are separate binaries named fieldnotes-<command> that are discovered
// and executed when an unknown command is invoked, the way kubectl and git
// handle plugins.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "fieldnotes-"

// DirEnv names a directory searched before every other plugin location.
const DirEnv = "FIELDNOTES_PLUGIN_DIR"

// KnownPlugins lists plugins with a published description. These get a
// fuller error message when they are not installed.
var KnownPlugins = map[string]string{
	"plot": "Plots cleaned observation tables by date range and observer.",
}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// searchDirs returns the directories searched before PATH, in order.
func searchDirs() []string {
	var dirs []string
	if dir := os.Getenv(DirEnv); dir != "" {
		dirs = append(dirs, dir)
	}
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".fieldnotes", "plugins"))
	}
	return dirs
}

// FindPlugin searches for a plugin binary named fieldnotes-<command> in:
//  1. $FIELDNOTES_PLUGIN_DIR
//  2. the directory holding the fieldnotes binary
//  3. ~/.fieldnotes/plugins/
//  4. PATH
func FindPlugin(command string) (string, error) {
	if command == "" || strings.ContainsAny(command, `/\`) {
		return "", ErrPluginNotFound
	}
	pluginName := Prefix + command

	for _, dir := range searchDirs() {
		candidate := filepath.Join(dir, pluginName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(pluginName); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the given arguments, connected to this
// process's stdin, stdout and stderr, and returns its exit code.
func Execute(ctx context.Context, pluginPath string, args []string) int {
	cmd := exec.CommandContext(ctx, pluginPath, args...) // #nosec G204 -- plugin path comes from FindPlugin
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 2
	}

	return 0
}

// FormatNotFoundError returns a helpful error message when a plugin is not found.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"fieldnotes\"\n", command)

	if info, ok := KnownPlugins[command]; ok {
		fmt.Fprintf(&sb, "\n%q is available as a plugin.\n", command)
		sb.WriteString(info)
		sb.WriteString("\n\nInstall the plugin binary as one of:\n")
	} else {
		sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	}

	fmt.Fprintf(&sb, "  - $%s/%s%s\n", DirEnv, Prefix, command)
	fmt.Fprintf(&sb, "  - %s%s in the same directory as fieldnotes\n", Prefix, command)
	fmt.Fprintf(&sb, "  - ~/.fieldnotes/plugins/%s%s\n", Prefix, command)
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)

	sb.WriteString("\nRun 'fieldnotes --help' for usage.")

	return sb.String()
}

// isExecutable checks if a regular file exists and has an execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0o111 != 0
}
