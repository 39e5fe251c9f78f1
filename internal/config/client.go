package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// ClientConfig is the chefctl configuration, read from a HuJSON file
// (JSON with comments and trailing commas) so the file stays
// hand-editable.
type ClientConfig struct {
	ServerURL string `json:"serverUrl"`
}

// DefaultClientConfigPath returns the conventional chefctl config
// location under the user's config directory.
func DefaultClientConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chefboard", "config.hujson")
}

// LoadClient reads a client config file. A missing file is not an
// error: the zero config is returned and env/flags take over.
func LoadClient(path string) (ClientConfig, error) {
	var cfg ClientConfig
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}
