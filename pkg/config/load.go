package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	nserr "github.com/namesheet/namesplit/pkg/errors"
)

// SidecarName is the directory-level default config file consulted by
// batch discovery when an image has no sidecar of its own.
const SidecarName = "namesplit.toml"

// Load reads, defaults, and validates a TOML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nserr.Wrap(nserr.ErrCodeFileNotFound, err, "config not found: %s", path)
		}
		return Config{}, nserr.Wrap(nserr.ErrCodeConfigInvalid, err, "failed to read config: %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML bytes into a validated Config.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, nserr.Wrap(nserr.ErrCodeConfigInvalid, err, "malformed config document")
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// FindForImage resolves the configuration for one image during a batch run.
//
// Search order, first found wins:
//  1. <stem>_config.toml next to the image
//  2. <stem>.toml next to the image
//  3. namesplit.toml in the image's directory
//  4. the supplied default
//
// A sidecar that exists but fails to load is skipped rather than
// failing the image before its job runs.
func FindForImage(imagePath string, def Config) Config {
	dir := filepath.Dir(imagePath)
	stem := imagePath[:len(imagePath)-len(filepath.Ext(imagePath))]

	candidates := []string{
		stem + "_config.toml",
		stem + ".toml",
		filepath.Join(dir, SidecarName),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		c, err := Load(p)
		if err != nil {
			continue
		}
		return c
	}
	return def
}
