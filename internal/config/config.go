// Package config loads daylog settings from defaults, an optional YAML file
// and DAYLOG_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/daylog/internal/archive"
	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/gist"
	"gopkg.in/yaml.v3"
)

// GistConfig holds the remote backup settings as they appear in the file.
type GistConfig struct {
	APIURL   string        `yaml:"api_url"`
	Marker   string        `yaml:"marker"`
	FileName string        `yaml:"file_name"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config holds every runtime setting.
type Config struct {
	DBPath         string        `yaml:"db_path"`
	Timezone       string        `yaml:"timezone"`
	Cutoff         string        `yaml:"cutoff"`
	ReminderLead   time.Duration `yaml:"reminder_lead"`
	CatchUpOnStart bool          `yaml:"catch_up_on_start"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"` // "stderr" writes to the terminal
	Gist           GistConfig    `yaml:"gist"`
}

// DefaultConfig returns the settings used when nothing is configured. The
// database lives under ~/.daylog unless home cannot be determined.
func DefaultConfig() Config {
	g := gist.DefaultConfig()
	return Config{
		DBPath:         filepath.Join(homeDir(), ".daylog", "daylog.db"),
		Timezone:       "Local",
		Cutoff:         "23:59:59",
		ReminderLead:   30 * time.Minute,
		CatchUpOnStart: true,
		LogLevel:       "info",
		LogFile:        filepath.Join(homeDir(), ".daylog", "daylog.log"),
		Gist: GistConfig{
			APIURL:   g.APIURL,
			Marker:   g.Marker,
			FileName: g.FileName,
			Timeout:  g.Timeout,
		},
	}
}

// DefaultPath is the config file read when DAYLOG_CONFIG is unset.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".daylog", "config.yaml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Load builds the effective configuration. A missing file is not an error;
// a malformed one is. The result is validated.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("DAYLOG_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.mergeFile(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DAYLOG_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("DAYLOG_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("DAYLOG_CUTOFF"); v != "" {
		c.Cutoff = v
	}
	if v := os.Getenv("DAYLOG_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DAYLOG_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("DAYLOG_GIST_API_URL"); v != "" {
		c.Gist.APIURL = v
	}
	if v := os.Getenv("DAYLOG_GIST_MARKER"); v != "" {
		c.Gist.Marker = v
	}
	if v := os.Getenv("DAYLOG_GIST_FILE_NAME"); v != "" {
		c.Gist.FileName = v
	}
	if v := os.Getenv("DAYLOG_REMINDER_LEAD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DAYLOG_REMINDER_LEAD: %w", err)
		}
		c.ReminderLead = d
	}
	if v := os.Getenv("DAYLOG_GIST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DAYLOG_GIST_TIMEOUT: %w", err)
		}
		c.Gist.Timeout = d
	}
	if v := os.Getenv("DAYLOG_CATCH_UP_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DAYLOG_CATCH_UP_ON_START: %w", err)
		}
		c.CatchUpOnStart = b
	}
	return nil
}

// Validate rejects settings the rest of the program cannot use.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if _, err := clock.ParseTimeOfDay(c.Cutoff); err != nil {
		errs = append(errs, fmt.Errorf("cutoff: %w", err))
	}
	if c.ReminderLead < 0 || c.ReminderLead >= 24*time.Hour {
		errs = append(errs, fmt.Errorf("reminder_lead must be between 0 and 24h, got %s", c.ReminderLead))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.LogFile) == "" {
		errs = append(errs, errors.New("log_file must not be empty"))
	}
	if !strings.HasPrefix(c.Gist.APIURL, "http://") && !strings.HasPrefix(c.Gist.APIURL, "https://") {
		errs = append(errs, fmt.Errorf("gist.api_url must be an http(s) URL, got %q", c.Gist.APIURL))
	}
	if strings.TrimSpace(c.Gist.Marker) == "" {
		errs = append(errs, errors.New("gist.marker must not be empty"))
	}
	if strings.TrimSpace(c.Gist.FileName) == "" {
		errs = append(errs, errors.New("gist.file_name must not be empty"))
	}
	if c.Gist.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("gist.timeout must be positive, got %s", c.Gist.Timeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Level maps LogLevel onto slog.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// OpenLog opens the diagnostics destination for appending. The returned
// close function is a no-op for stderr.
func (c Config) OpenLog() (io.Writer, func() error, error) {
	if c.LogFile == "stderr" {
		return os.Stderr, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, f.Close, nil
}

// ArchiveOptions converts the schedule settings. Call Validate first.
func (c Config) ArchiveOptions() archive.Options {
	opts := archive.DefaultOptions()
	if t, err := clock.ParseTimeOfDay(c.Cutoff); err == nil {
		opts.Cutoff = t
	}
	opts.ReminderLead = c.ReminderLead
	opts.CatchUpOnStart = c.CatchUpOnStart
	return opts
}

// GistClientConfig converts the backup settings.
func (c Config) GistClientConfig() gist.Config {
	return gist.Config{
		APIURL:   c.Gist.APIURL,
		Timeout:  c.Gist.Timeout,
		Marker:   c.Gist.Marker,
		FileName: c.Gist.FileName,
	}
}
