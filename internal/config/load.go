package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	sigsyaml "sigs.k8s.io/yaml"
)

// Supported build definition formats.
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatJSONC = "jsonc"
	FormatTOML  = "toml"
)

// FormatFromPath infers the build definition format from the file
// extension. Unknown extensions are parsed as YAML.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonc":
		return FormatJSONC
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// LoadBuildFile reads, parses, and validates the build definition at path.
func LoadBuildFile(path string) (*BuildConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build file %q: %w", path, err)
	}

	cfg, err := ParseBuildConfig(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Dir = filepath.Dir(path)

	return cfg, nil
}

// ParseBuildConfig parses and validates a build definition. Defaults from
// DefaultBuildConfig apply to any section the document leaves out.
func ParseBuildConfig(data []byte, format string) (*BuildConfig, error) {
	doc, err := normalize(data, format)
	if err != nil {
		return nil, err
	}

	cfg := DefaultBuildConfig()
	if err := sigsyaml.Unmarshal(doc, cfg); err != nil {
		return nil, fmt.Errorf("parsing build config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize converts every supported format into a YAML/JSON document.
func normalize(data []byte, format string) ([]byte, error) {
	switch format {
	case FormatYAML, FormatJSON, "":
		return data, nil
	case FormatJSONC:
		return jsonc.ToJSON(data), nil
	case FormatTOML:
		var doc map[string]interface{}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing TOML build config: %w", err)
		}

		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("converting TOML build config: %w", err)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported build config format %q", format)
	}
}
