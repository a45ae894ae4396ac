package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

/*
Config System Design:
This configuration system implements a hierarchical config with the following precedence
(highest to lowest priority):

1. Command line flags (RuntimeOverrides)
2. Environment variables (CMDSTREAM_*)
3. Local project config (.cmdstream/*.cmdstream.{yaml,json})
4. Global user config ($XDG_CONFIG_HOME/cmdstream/*.cmdstream.{yaml,json})
5. Default values (embedded defaults.cmdstream.yaml)

The system supports:
- Multiple config files in each directory, merged alphabetically
- Automatic merging of lists (they combine)
- Deep merging of maps
- Override of scalar values
- Tracking of where each config value originated
- Warnings for keys the schema does not know
- Schema validation of the final config

Example:
If you have these files:
~/.config/cmdstream/models.cmdstream.yaml:  { models: { fast: {...} } }
./.cmdstream/models.cmdstream.yaml:         { models: { local: {...} } }
The result has both the fast and the local model.
*/

const appName = "cmdstream"

//go:embed defaults.cmdstream.yaml
var defaultsYAML []byte

// envVarConfig defines an environment variable mapping
type envVarConfig struct {
	key      string // Key in the config
	envVar   string // Environment variable name
	isSecret bool   // Whether to redact in logs
}

// Environment variables to load
var envVars = []envVarConfig{
	{key: "log.level", envVar: "CMDSTREAM_LOG_LEVEL"},
	{key: "log.file", envVar: "CMDSTREAM_LOG_FILE"},
	{key: "activeModel", envVar: "CMDSTREAM_ACTIVE_MODEL"},
	{key: "parser.chunkSize", envVar: "CMDSTREAM_CHUNK_SIZE"},
	{key: "parser.maxBuffer", envVar: "CMDSTREAM_MAX_BUFFER"},
	{key: "parser.showPartial", envVar: "CMDSTREAM_SHOW_PARTIAL"},
	// Add more env vars here as needed
}

type configSource struct {
	value  interface{}
	source string
}

type loader struct {
	v       *viper.Viper
	sources map[string][]configSource
	known   map[string]bool
}

// New loads the configuration from every layer and applies the overrides.
func New(overrides *RuntimeOverrides) (*ConfigSchema, error) {
	dirs, err := configDirs()
	if err != nil {
		return nil, err
	}
	return load(dirs, overrides)
}

// configDirs returns the global then the local config directory.
func configDirs() ([]string, error) {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	return []string{
		filepath.Join(xdgConfig, appName),
		"." + appName,
	}, nil
}

func load(dirs []string, overrides *RuntimeOverrides) (*ConfigSchema, error) {
	l := &loader{
		v:       viper.New(),
		sources: make(map[string][]configSource),
		known:   GetKnownKeys(),
	}

	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	for _, dir := range dirs {
		files, err := findConfigFiles(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		for _, f := range files {
			if err := l.loadFile(f); err != nil {
				return nil, err
			}
		}
	}

	l.loadEnv()

	var cfg ConfigSchema
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.sources = l.sources

	if err := cfg.applyOverrides(overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFiles returns all *.cmdstream.{yaml,json} files in a directory
func findConfigFiles(dir string) ([]string, error) {
	var files []string
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, "."+appName+".yaml") ||
			strings.HasSuffix(name, "."+appName+".json") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// loadDefaults loads the default configuration from the embedded defaults file
func (l *loader) loadDefaults() error {
	l.v.SetConfigType("yaml")
	if err := l.v.ReadConfig(bytes.NewReader(defaultsYAML)); err != nil {
		return fmt.Errorf("could not read defaults: %w", err)
	}
	return nil
}

func (l *loader) loadFile(f string) error {
	v := viper.New()
	v.SetConfigFile(f)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", f, err)
	}

	settings := v.AllSettings()
	flat := make(map[string]interface{})
	flatten("", settings, flat)
	for key, value := range flat {
		if !IsKnownKey(l.known, key) {
			slog.Warn("unknown configuration key", "key", key, "file", f)
		}
		l.sources[key] = append(l.sources[key], configSource{value: value, source: f})
	}

	// Merge with specific strategy
	if err := l.mergeConfig(settings); err != nil {
		return fmt.Errorf("error merging config from %s: %w", f, err)
	}
	return nil
}

func (l *loader) loadEnv() {
	for _, env := range envVars {
		val, ok := os.LookupEnv(env.envVar)
		if !ok {
			continue
		}
		l.v.Set(env.key, val)

		displayVal := interface{}(val)
		if env.isSecret {
			displayVal = "[REDACTED]"
		}
		key := strings.ToLower(env.key)
		l.sources[key] = append(l.sources[key], configSource{
			value:  displayVal,
			source: fmt.Sprintf("%s environment variable", env.envVar),
		})
	}
}

func (l *loader) mergeConfig(settings map[string]interface{}) error {
	for key, value := range settings {
		existing := l.v.Get(key)
		if existing == nil {
			// Key doesn't exist, just set it
			l.v.Set(key, value)
			continue
		}

		// Handle different types
		switch existingVal := existing.(type) {
		case []interface{}:
			newSlice, ok := value.([]interface{})
			if !ok {
				return fmt.Errorf("type mismatch for key %s: expected slice, got %T", key, value)
			}
			l.v.Set(key, combineUnique(existingVal, newSlice))

		case map[string]interface{}:
			newMap, ok := value.(map[string]interface{})
			if !ok {
				return fmt.Errorf("type mismatch for key %s: expected map, got %T", key, value)
			}
			l.v.Set(key, mergeMapRecursive(existingVal, newMap))

		default:
			// For all other types, override
			l.v.Set(key, value)
		}
	}
	return nil
}

// combineUnique appends next to existing, skipping values already present.
func combineUnique(existing, next []interface{}) []interface{} {
	seen := make(map[interface{}]bool)
	combined := make([]interface{}, 0, len(existing)+len(next))
	for _, list := range [][]interface{}{existing, next} {
		for _, v := range list {
			if isComparable(v) {
				if seen[v] {
					continue
				}
				seen[v] = true
			}
			combined = append(combined, v)
		}
	}
	return combined
}

func isComparable(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return false
	}
	return true
}

func mergeMapRecursive(existing, new map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	// Copy existing map
	for k, v := range existing {
		result[k] = v
	}

	// Merge new map
	for k, v := range new {
		if existing[k] == nil {
			result[k] = v
			continue
		}

		switch existingVal := existing[k].(type) {
		case map[string]interface{}:
			if newVal, ok := v.(map[string]interface{}); ok {
				result[k] = mergeMapRecursive(existingVal, newVal)
			} else {
				result[k] = v
			}
		case []interface{}:
			if newVal, ok := v.([]interface{}); ok {
				result[k] = combineUnique(existingVal, newVal)
			} else {
				result[k] = v
			}
		default:
			result[k] = v
		}
	}

	return result
}

// flatten turns nested settings into dotted keys.
func flatten(prefix string, settings map[string]interface{}, out map[string]interface{}) {
	for k, v := range settings {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if m, ok := v.(map[string]interface{}); ok && len(m) > 0 {
			flatten(key, m, out)
			continue
		}
		out[key] = v
	}
}

// Validate validates the configuration against the schema
func (s *ConfigSchema) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}

	// Additional custom validations
	if s.ActiveModel != "" {
		if _, ok := s.Models[s.ActiveModel]; !ok {
			return fmt.Errorf("activeModel %q must be one of configured models: %v", s.ActiveModel, modelNames(s.Models))
		}
	}

	return nil
}

func modelNames(models map[string]Model) []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
