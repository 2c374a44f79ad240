// Package config handles the XDG configuration directory, config.toml and
// the credential path.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	// AppName is the application directory name.
	AppName = "taskdash"

	// ConfigFile is the optional settings file in the config directory.
	ConfigFile = "config.toml"

	// TokenFile holds the bearer credential.
	TokenFile = "token"

	// DefaultAPIURL is the task service base URL when nothing is configured.
	DefaultAPIURL = "http://localhost:5000/api"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 10 * time.Second

	// DefaultLocale drives title collation.
	DefaultLocale = "en"

	// EnvAPIURL overrides api_url from config.toml.
	EnvAPIURL = "TASKDASH_API_URL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// APIURL is the base URL of the task service.
	APIURL string

	// Timeout bounds each API call.
	Timeout time.Duration

	// Locale is a BCP 47 tag used to sort titles.
	Locale string

	// Log receives debug output. The zero value discards.
	Log logr.Logger
}

// fileSettings is the on-disk shape of config.toml.
type fileSettings struct {
	APIURL  string `toml:"api_url"`
	Timeout string `toml:"timeout"`
	Locale  string `toml:"locale"`
}

// New creates a Config with the default or specified config directory and
// applies config.toml and the environment on top of the defaults.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdash or $HOME/.config/taskdash.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:     dir,
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
		Locale:  DefaultLocale,
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	return cfg, nil
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", ConfigFile, err)
	}

	var fsettings fileSettings
	if err := toml.Unmarshal(data, &fsettings); err != nil {
		return fmt.Errorf("parsing %s: %w", ConfigFile, err)
	}

	if fsettings.APIURL != "" {
		c.APIURL = fsettings.APIURL
	}
	if fsettings.Timeout != "" {
		d, err := time.ParseDuration(fsettings.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("parsing %s: invalid timeout: %s", ConfigFile, fsettings.Timeout)
		}
		c.Timeout = d
	}
	if fsettings.Locale != "" {
		if _, err := language.Parse(fsettings.Locale); err != nil {
			return fmt.Errorf("parsing %s: invalid locale: %s", ConfigFile, fsettings.Locale)
		}
		c.Locale = fsettings.Locale
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Path returns the path to config.toml.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored credential.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// Language returns the collation locale, or English if Locale is unset or invalid.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// APITimeout returns Timeout, or DefaultTimeout if unset.
func (c *Config) APITimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
