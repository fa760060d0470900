// Package config loads runtime configuration: secrets and connection targets
// from the environment (with .env support), tunable rule lists from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jmholla/triagebot/internal/filter"
)

// Environment variable names. Secrets are only ever read from the
// environment, never from config files.
const (
	EnvGitHubToken   = "GITHUB_TOKEN"
	EnvOpenRouterKey = "OPENROUTER_API_KEY"
	EnvSpreadsheetID = "SPREADSHEET_ID"
	EnvCredentials   = "GOOGLE_CREDENTIALS"
	EnvRepo          = "GITHUB_REPO"
	EnvModel         = "LLM_MODEL"
)

const (
	DefaultRepo            = "WordPress/gutenberg"
	DefaultCredentialsFile = "service-account.json"
)

// Config represents the application configuration
type Config struct {
	Repo            string `yaml:"repo,omitempty"`
	Model           string `yaml:"model,omitempty"`
	SpreadsheetID   string `yaml:"spreadsheet_id,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`

	// Filter overrides the built-in rule lists.
	Filter *FilterOverrides `yaml:"filter,omitempty"`

	// Secrets, environment-only.
	GitHubToken   string `yaml:"-"`
	OpenRouterKey string `yaml:"-"`
}

// FilterOverrides allows customizing the rule filter lists. A non-empty list
// replaces the corresponding built-in list wholesale.
type FilterOverrides struct {
	ExcludeLabels     []string `yaml:"exclude_labels,omitempty"`
	PositiveLabels    []string `yaml:"positive_labels,omitempty"`
	HighValuePatterns []string `yaml:"high_value_patterns,omitempty"`
	PositiveKeywords  []string `yaml:"positive_keywords,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".triagebot"
	}
	return filepath.Join(configDir, "triagebot")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".triagebot.yaml"
}

// Load loads the configuration: a .env file if present, then the global
// config from the XDG config directory, then any local .triagebot.yaml
// merged on top (local values take precedence), then environment variables
// on top of everything.
func Load() (*Config, error) {
	// Best effort; a missing .env is the normal case outside dev.
	_ = godotenv.Load()

	cfg := &Config{}

	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}
		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}
		cfg = mergeConfig(cfg, &localCfg)
	}

	applyEnv(cfg)

	if cfg.Repo == "" {
		cfg.Repo = DefaultRepo
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = DefaultCredentialsFile
	}

	return cfg, nil
}

// applyEnv layers environment variables over the file-based config.
func applyEnv(cfg *Config) {
	cfg.GitHubToken = os.Getenv(EnvGitHubToken)
	cfg.OpenRouterKey = os.Getenv(EnvOpenRouterKey)

	if v := os.Getenv(EnvSpreadsheetID); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := os.Getenv(EnvCredentials); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv(EnvRepo); v != "" {
		cfg.Repo = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Model = v
	}
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	if local.Repo != "" {
		result.Repo = local.Repo
	} else {
		result.Repo = global.Repo
	}
	if local.Model != "" {
		result.Model = local.Model
	} else {
		result.Model = global.Model
	}
	if local.SpreadsheetID != "" {
		result.SpreadsheetID = local.SpreadsheetID
	} else {
		result.SpreadsheetID = global.SpreadsheetID
	}
	if local.CredentialsFile != "" {
		result.CredentialsFile = local.CredentialsFile
	} else {
		result.CredentialsFile = global.CredentialsFile
	}

	result.Filter = mergeFilterOverrides(global.Filter, local.Filter)

	return result
}

func mergeFilterOverrides(global, local *FilterOverrides) *FilterOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &FilterOverrides{}

	if global != nil {
		*result = *global
	}
	if local != nil {
		if len(local.ExcludeLabels) > 0 {
			result.ExcludeLabels = local.ExcludeLabels
		}
		if len(local.PositiveLabels) > 0 {
			result.PositiveLabels = local.PositiveLabels
		}
		if len(local.HighValuePatterns) > 0 {
			result.HighValuePatterns = local.HighValuePatterns
		}
		if len(local.PositiveKeywords) > 0 {
			result.PositiveKeywords = local.PositiveKeywords
		}
	}
	return result
}

// BuildFilter returns the rule filter with any configured overrides applied
// to the built-in lists.
func (c *Config) BuildFilter() *filter.Filter {
	f := filter.Default()
	if c.Filter == nil {
		return f
	}
	if len(c.Filter.ExcludeLabels) > 0 {
		f.ExcludeLabels = c.Filter.ExcludeLabels
	}
	if len(c.Filter.PositiveLabels) > 0 {
		f.PositiveLabels = c.Filter.PositiveLabels
	}
	if len(c.Filter.HighValuePatterns) > 0 {
		f.HighValuePatterns = c.Filter.HighValuePatterns
	}
	if len(c.Filter.PositiveKeywords) > 0 {
		f.PositiveKeywords = c.Filter.PositiveKeywords
	}
	return f
}

// Require reports every missing value among the given environment variable
// names in a single error, so the user can fix them all at once.
func (c *Config) Require(vars ...string) error {
	var missing []string
	for _, v := range vars {
		if c.value(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) value(envVar string) string {
	switch envVar {
	case EnvGitHubToken:
		return c.GitHubToken
	case EnvOpenRouterKey:
		return c.OpenRouterKey
	case EnvSpreadsheetID:
		return c.SpreadsheetID
	case EnvCredentials:
		return c.CredentialsFile
	case EnvRepo:
		return c.Repo
	case EnvModel:
		return c.Model
	default:
		return os.Getenv(envVar)
	}
}
