package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const marbleFile = "marble.yaml"

// LoadMarble loads the marble race configuration.
// Search order: customPath -> ~/.marble/configs/marble.yaml -> ./configs/marble.yaml -> embedded default
//
// Every source is decoded over DefaultMarbleConfig, so a partial file only
// overrides the keys it names.
func LoadMarble(customPath string) (MarbleConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return MarbleConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseMarble(data)
		if err != nil {
			return MarbleConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(marbleFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseMarble(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", marbleFile)); err == nil {
		if cfg, err := parseMarble(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseMarble(defaultMarbleYAML)
	if err != nil {
		return DefaultMarbleConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

func parseMarble(data []byte) (MarbleConfig, error) {
	cfg := DefaultMarbleConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".marble", "configs", filename)
}

// DataDir returns ~/.marble, creating it if needed.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	dir := filepath.Join(home, ".marble")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("config: create %s: %w", dir, err)
	}
	return dir, nil
}
