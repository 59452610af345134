// FILE: lixenwraith/propbind/cmd/propbind/settings.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/propbind"
)

// Settings selects and configures the store the CLI operates on.
type Settings struct {
	Store       string `toml:"store"`
	Path        string `toml:"path"`
	Collection  string `toml:"collection"`
	URI         string `toml:"uri"`
	Database    string `toml:"database"`
	CommentSign string `toml:"comment_sign"`

	Log struct {
		Level       string `toml:"level"`
		Development bool   `toml:"development"`
	} `toml:"log"`
}

// DefaultSettings targets ./app.properties.
func DefaultSettings() Settings {
	s := Settings{
		Store:       string(propbind.StoreFile),
		Path:        "app.properties",
		Collection:  "properties",
		URI:         "mongodb://localhost:27017",
		Database:    "propbind",
		CommentSign: propbind.DefaultCommentSign,
	}
	s.Log.Level = "warn"
	return s
}

// LoadSettings decodes path over DefaultSettings. The format follows the
// file extension: .toml, .yaml or .yml.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read settings '%s': %w", path, err)
	}

	raw := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return settings, fmt.Errorf("failed to parse TOML settings '%s': %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return settings, fmt.Errorf("failed to parse YAML settings '%s': %w", path, err)
		}
	default:
		return settings, fmt.Errorf("unsupported settings format %q", ext)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		TagName:          "toml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return settings, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return settings, fmt.Errorf("decode failed for '%s': %w", path, err)
	}

	return settings, settings.Validate()
}

// Validate checks that the selected store is fully described.
func (s Settings) Validate() error {
	switch propbind.StoreKind(s.Store) {
	case propbind.StoreFile:
		if s.Path == "" {
			return fmt.Errorf("file store requires a path")
		}
	case propbind.StoreSQLite:
		if s.Path == "" || s.Collection == "" {
			return fmt.Errorf("sqlite store requires a path and a collection")
		}
	case propbind.StoreMongo:
		if s.URI == "" || s.Database == "" || s.Collection == "" {
			return fmt.Errorf("mongo store requires a uri, a database and a collection")
		}
	default:
		return fmt.Errorf("unknown store %q (want file, sqlite or mongo)", s.Store)
	}
	if s.CommentSign == "" {
		return fmt.Errorf("comment sign cannot be empty")
	}
	return nil
}

// Builder returns a manager builder for the configured store.
func (s Settings) Builder() *propbind.Builder {
	b := propbind.NewBuilder().WithCommentSign(s.CommentSign)
	switch propbind.StoreKind(s.Store) {
	case propbind.StoreSQLite:
		b.WithSQLite(s.Path, s.Collection)
	case propbind.StoreMongo:
		b.WithMongo(s.URI, s.Database, s.Collection)
	default:
		b.WithFile(s.Path)
	}
	return b
}
