package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the home directory when no -c flag is given.
const ConfigFileName = ".pseudo.yaml"

// Config holds the console settings read from a YAML file.
type Config struct {
	Step    bool   `yaml:"step"`    // start in single-step mode
	Seed    *int64 `yaml:"seed"`    // fixed seed for RANDOM
	Locale  string `yaml:"locale"`  // number formatting, e.g. "en-US"
	History string `yaml:"history"` // REPL history file
	Trace   bool   `yaml:"trace"`   // print every snapshot as YAML
	Verbose bool   `yaml:"verbose"` // debug logging
}

// DefaultConfigPath returns $HOME/.pseudo.yaml, or "" without a home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ConfigFileName)
}

// LoadConfig reads the configuration at path. A missing file yields the zero
// Config when optional is true.
func LoadConfig(path string, optional bool) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := DecodeConfig(file)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig parses a YAML configuration, rejecting unknown keys. Empty
// input is the zero Config.
func DecodeConfig(r io.Reader) (Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
