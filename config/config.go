// Package config loads and stores assembler-wide defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the assembler configuration.
type Config struct {
	// Assembler settings
	Assembler struct {
		BaseAddress  string `toml:"base_address"`
		ProjectRoot  string `toml:"project_root"`
		EnforceStart bool   `toml:"enforce_start"`
	} `toml:"assembler"`

	// Output settings
	Output struct {
		Formats      []string `toml:"formats"`
		MifDepth     int      `toml:"mif_depth"`
		UppercaseMem bool     `toml:"uppercase_mem"`
	} `toml:"output"`

	// Disassembler settings
	Disassembler struct {
		RenameUnsupportedRoots bool `toml:"rename_unsupported_roots"`
	} `toml:"disassembler"`

	// Logging settings
	Logging struct {
		Verbose bool `toml:"verbose"`
		Debug   bool `toml:"debug"`
	} `toml:"logging"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembler.BaseAddress = "0x0000"
	cfg.Assembler.ProjectRoot = "."
	cfg.Assembler.EnforceStart = true

	cfg.Output.Formats = []string{"asc"}
	cfg.Output.MifDepth = 4096
	cfg.Output.UppercaseMem = true

	cfg.Disassembler.RenameUnsupportedRoots = true

	cfg.Logging.Verbose = false
	cfg.Logging.Debug = false

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "scpasm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "scpasm.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "scpasm")

	default:
		return "scpasm.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "scpasm.toml"
	}

	return filepath.Join(configDir, "scpasm.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, falling back to
// defaults when the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
