package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the archive builder
type Config struct {
	// Bluesky account settings
	Bluesky BlueskyConfig `yaml:"bluesky" json:"bluesky"`

	// Feed fetch settings
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BlueskyConfig holds account and API settings
type BlueskyConfig struct {
	// Handle is the account whose feed is archived, e.g. "yourname.bsky.social"
	// (no leading "@"). Required.
	Handle string `yaml:"handle" json:"handle"`

	// AppPassword is only needed when UseSession is true. Prefer storing it
	// via "bskyarchive auth login" instead of the config file.
	AppPassword string `yaml:"app_password" json:"app_password"`

	// UseSession selects the authenticated variant (createSession + bearer
	// token) instead of the public read-only API.
	UseSession bool `yaml:"use_session" json:"use_session"`

	// PublicAPI and SessionAPI are the xrpc base URLs. Overridable for tests.
	PublicAPI  string `yaml:"public_api" json:"public_api"`
	SessionAPI string `yaml:"session_api" json:"session_api"`

	// SessionFile is where the cached session token lives. Empty means the
	// default under the user config directory.
	SessionFile string `yaml:"session_file" json:"session_file"`
}

// FetchConfig holds pagination settings
type FetchConfig struct {
	PageSize       int           `yaml:"page_size" json:"page_size"`
	PageDelay      time.Duration `yaml:"page_delay" json:"page_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// OutputConfig holds output tree settings
type OutputConfig struct {
	// Directory is the root of the generated site.
	Directory string `yaml:"directory" json:"directory"`

	// BuildVersion is appended as ?v=... to stylesheet links for
	// cache-busting. Empty means derive at build time (GITHUB_SHA or the
	// current epoch seconds).
	BuildVersion string `yaml:"build_version" json:"build_version"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bluesky: BlueskyConfig{
			PublicAPI:  "https://public.api.bsky.app/xrpc",
			SessionAPI: "https://bsky.social/xrpc",
		},
		Fetch: FetchConfig{
			PageSize:       100,
			PageDelay:      200 * time.Millisecond,
			RequestTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Directory: "./docs",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables. The variable
// names match the original CI setup, so an existing scheduled workflow keeps
// working unchanged.
func (c *Config) LoadFromEnv() error {
	if handle := os.Getenv("BLUESKY_HANDLE"); handle != "" {
		c.Bluesky.Handle = handle
	}
	if password := os.Getenv("BLUESKY_APP_PASSWORD"); password != "" {
		c.Bluesky.AppPassword = password
	}
	if sha := os.Getenv("GITHUB_SHA"); sha != "" {
		c.Output.BuildVersion = sha
	}
	if dir := os.Getenv("BSKYARCHIVE_OUTPUT_DIR"); dir != "" {
		c.Output.Directory = dir
	}
	if size := os.Getenv("BSKYARCHIVE_PAGE_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			c.Fetch.PageSize = val
		}
	}
	if level := os.Getenv("BSKYARCHIVE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".bskyarchive.yaml",
		".bskyarchive.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "bskyarchive", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "bskyarchive", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".bskyarchive.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Configuration errors are
// fatal before any network call is made.
func (c *Config) Validate() error {
	var errs []error

	if c.Bluesky.Handle == "" {
		errs = append(errs, errors.New("account handle is required (BLUESKY_HANDLE, e.g. yourname.bsky.social)"))
	}
	if strings.HasPrefix(c.Bluesky.Handle, "@") {
		errs = append(errs, errors.New("account handle must not include the leading '@'"))
	}
	if c.Bluesky.PublicAPI == "" {
		errs = append(errs, errors.New("public API base URL is required"))
	}
	if c.Bluesky.UseSession && c.Bluesky.SessionAPI == "" {
		errs = append(errs, errors.New("session API base URL is required in session mode"))
	}

	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > 100 {
		errs = append(errs, errors.New("page size must be between 1 and 100"))
	}
	if c.Fetch.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}
	if c.Fetch.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if handle, ok := flags["handle"].(string); ok && handle != "" {
		c.Bluesky.Handle = handle
	}
	if useSession, ok := flags["session"].(bool); ok && useSession {
		c.Bluesky.UseSession = true
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if buildVersion, ok := flags["build-version"].(string); ok && buildVersion != "" {
		c.Output.BuildVersion = buildVersion
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// SessionFilePath returns the configured session cache path, defaulting to
// the user config directory.
func (c *Config) SessionFilePath() string {
	if c.Bluesky.SessionFile != "" {
		return c.Bluesky.SessionFile
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "bskyarchive", "session.json")
}

// BuildVersion returns the cache-busting token, falling back to the current
// epoch seconds when none was configured.
func (c *Config) BuildVersion() string {
	if c.Output.BuildVersion != "" {
		return c.Output.BuildVersion
	}
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bskyarchive.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
