// FILE: lixenwraith/propbind/cmd/propbind/discovery.go
package main

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoveryOptions controls where the CLI looks for its settings file when
// --config is not given.
type DiscoveryOptions struct {
	Name       string   // file name without extension
	Extensions []string // tried in order within each directory
	Paths      []string // searched before the current and XDG directories

	EnvVar        string // names an explicit settings file; wins over searching
	UseXDG        bool
	UseCurrentDir bool
}

// DefaultDiscoveryOptions looks for <app>.toml, .yaml or .yml, honouring
// $<APP>_CONFIG.
func DefaultDiscoveryOptions(appName string) DiscoveryOptions {
	return DiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// DiscoverSettings returns the settings file to load, or "" to run on
// defaults and flags alone.
func DiscoverSettings(opts DiscoveryOptions) string {
	if opts.EnvVar != "" {
		if explicit := os.Getenv(opts.EnvVar); explicit != "" {
			return explicit
		}
	}

	for _, dir := range opts.searchDirs() {
		if path, ok := settingsFileIn(dir, opts.Name, opts.Extensions); ok {
			return path
		}
	}
	return ""
}

func (o DiscoveryOptions) searchDirs() []string {
	dirs := append([]string(nil), o.Paths...)
	if o.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if o.UseXDG {
		dirs = append(dirs, configDirs(o.Name)...)
	}
	return dirs
}

func settingsFileIn(dir, name string, exts []string) (string, bool) {
	for _, ext := range exts {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// configDirs lists the per-user then system-wide XDG directories for app.
func configDirs(app string) []string {
	user := os.Getenv("XDG_CONFIG_HOME")
	if user == "" {
		if home := os.Getenv("HOME"); home != "" {
			user = filepath.Join(home, ".config")
		}
	}

	system := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(system) == 0 {
		system = []string{"/etc/xdg", "/etc"}
	}

	var dirs []string
	if user != "" {
		dirs = append(dirs, filepath.Join(user, app))
	}
	for _, dir := range system {
		dirs = append(dirs, filepath.Join(dir, app))
	}
	return dirs
}
