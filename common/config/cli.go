package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultBuilderURL is where the CLI looks for the service without a profile.
const DefaultBuilderURL = "http://localhost:8085"

// CLIConfig is the qb profile file, by default ~/.qb/config.yaml.
type CLIConfig struct {
	CurrentProfile string                 `yaml:"current_profile" mapstructure:"current_profile"`
	Profiles       map[string]*CLIProfile `yaml:"profiles" mapstructure:"profiles"`
	Defaults       *CLIDefaults           `yaml:"defaults" mapstructure:"defaults"`
	path           string
}

// CLIProfile points the CLI at one query builder deployment.
type CLIProfile struct {
	BuilderURL string `yaml:"builder_url" mapstructure:"builder_url"`
	Output     string `yaml:"output,omitempty" mapstructure:"output"`
}

// CLIDefaults apply when a profile leaves a setting empty.
type CLIDefaults struct {
	BuilderURL string `yaml:"builder_url" mapstructure:"builder_url"`
	Output     string `yaml:"output" mapstructure:"output"`
}

// DefaultCLI returns an empty profile file with built-in defaults.
func DefaultCLI() *CLIConfig {
	return &CLIConfig{
		CurrentProfile: "default",
		Profiles:       make(map[string]*CLIProfile),
		Defaults: &CLIDefaults{
			BuilderURL: DefaultBuilderURL,
			Output:     "table",
		},
	}
}

// LoadCLI reads the profile file from $QB_CONFIG_DIR or ~/.qb.
// QB_BUILDER_URL and QB_OUTPUT override the defaults.
func LoadCLI() (*CLIConfig, error) {
	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		configDir = filepath.Join(home, ".qb")
	}
	return LoadCLIFile(filepath.Join(configDir, "config.yaml"))
}

// LoadCLIFile loads a profile file from path. A missing file yields defaults.
func LoadCLIFile(path string) (*CLIConfig, error) {
	v := viper.New()
	v.SetDefault("current_profile", "default")
	v.SetDefault("defaults.builder_url", DefaultBuilderURL)
	v.SetDefault("defaults.output", "table")

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("defaults.builder_url", "QB_BUILDER_URL")
	_ = v.BindEnv("defaults.output", "QB_OUTPUT")

	// only a missing file falls back to defaults
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := DefaultCLI()
	cfg.path = path
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*CLIProfile)
	}
	return cfg, nil
}

// Path returns the file Save writes to.
func (c *CLIConfig) Path() string {
	return c.path
}

// Save writes the profile file with 0600 permissions.
func (c *CLIConfig) Save() error {
	if c.path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(home, ".qb", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

// SetProfile creates or updates a profile, makes it current and saves.
func (c *CLIConfig) SetProfile(name, builderURL string) error {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*CLIProfile)
	}
	p, ok := c.Profiles[name]
	if !ok {
		p = &CLIProfile{}
		c.Profiles[name] = p
	}
	p.BuilderURL = builderURL
	c.CurrentProfile = name
	return c.Save()
}

// GetProfile retrieves a profile by name (or current profile if name is empty)
func (c *CLIConfig) GetProfile(name string) (*CLIProfile, error) {
	if name == "" {
		name = c.CurrentProfile
	}
	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}
	return profile, nil
}

// RemoveProfile removes a profile from the configuration
func (c *CLIConfig) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return c.Save()
}

// GetBuilderURL returns the builder URL from profile (or the current one)
// falling back to defaults.
func (c *CLIConfig) GetBuilderURL(profile string) string {
	if p, err := c.GetProfile(profile); err == nil && p.BuilderURL != "" {
		return p.BuilderURL
	}
	return c.Defaults.BuilderURL
}

// GetOutput returns the output format from profile or defaults.
func (c *CLIConfig) GetOutput(profile string) string {
	if p, err := c.GetProfile(profile); err == nil && p.Output != "" {
		return p.Output
	}
	return c.Defaults.Output
}
