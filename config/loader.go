package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/locrag"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "locrag.yaml"

// Load builds the configuration in layers: defaults, then the YAML file (if
// one is found), then environment overrides, then file references. The result
// is validated before it is returned.
//
// The config file is discovered in this order:
//  1. configPath, when non-empty
//  2. LOCRAG_CONFIG
//  3. ./locrag.yaml
//  4. $XDG_CONFIG_HOME/locrag/config.yaml (~/.config/locrag/config.yaml)
//
// getenv is usually os.Getenv.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg := Defaults()

	path, err := discoverConfigFile(configPath, getenv)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadYAMLFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(&cfg, getenv)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads environment variables from a .env file in the working
// directory. A missing file is not an error and set variables are never
// overwritten.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return locrag.WrapError(locrag.ECONFIG, "load .env", err)
}

func discoverConfigFile(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", locrag.WrapError(locrag.ECONFIG, "load config", err)
		}
		return explicit, nil
	}
	if p := getenv("LOCRAG_CONFIG"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", locrag.WrapError(locrag.ECONFIG, "load config", fmt.Errorf("LOCRAG_CONFIG: %w", err))
		}
		return p, nil
	}

	candidates := []string{DefaultFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "locrag", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return locrag.WrapError(locrag.ECONFIG, "load config", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return locrag.WrapError(locrag.ECONFIG, "load config", fmt.Errorf("parsing %s: %w", path, err))
	}
	return nil
}

// applyEnvOverrides overwrites file values with the environment.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := getenv("STORE_NAME"); v != "" {
		cfg.Gemini.StoreName = v
	}
	if v := getenv("LOCRAG_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := getenv("LOCRAG_STORE_FILE"); v != "" {
		cfg.Registry.Path = v
	}
	if v := getenv("LOCRAG_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := getenv("LOCRAG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("LOCRAG_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// resolveFileReferences reads _file fields into their value fields.
// A value already set directly or via the environment wins.
func resolveFileReferences(cfg *Config) error {
	if cfg.Gemini.APIKeyFile != "" && cfg.Gemini.APIKey == "" {
		val, err := readSecretFile(cfg.Gemini.APIKeyFile)
		if err != nil {
			return locrag.WrapError(locrag.ECONFIG, "load config", fmt.Errorf("gemini.api_key_file: %w", err))
		}
		cfg.Gemini.APIKey = val
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
