package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"tally/internal/tasklist"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tally.db"
	DefaultBaseURL        = "http://localhost:8080"
	DefaultServerAddr     = ":8080"

	// ConfigEnv overrides the config file location.
	ConfigEnv = "TALLY_CONFIG"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Toggle         string `toml:"toggle"`
	Delete         string `toml:"delete"`
	Detail         string `toml:"detail"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	Search         string `toml:"search"`
	FilterPriority string `toml:"filter_priority"`
	SortNone       string `toml:"sort_none"`
	SortCreated    string `toml:"sort_created"`
	SortDue        string `toml:"sort_due"`
	SortPriority   string `toml:"sort_priority"`
	NextField      string `toml:"next_field"`
	PrevField      string `toml:"prev_field"`
	Refresh        string `toml:"refresh"`
}

type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

type ServerConfig struct {
	Addr   string `toml:"addr"`
	DBPath string `toml:"db_path"`
}

type Config struct {
	BaseURL        string       `toml:"base_url"`
	RequestTimeout string       `toml:"request_timeout"`
	DefaultSort    string       `toml:"default_sort"`
	Log            LogConfig    `toml:"log"`
	Server         ServerConfig `toml:"server"`
	Keys           Keymap       `toml:"keys"`
}

// ResolveConfigPath picks $TALLY_CONFIG, then the per-user config dir,
// then the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "tally", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := tasklist.ParseSortCriterion(c.DefaultSort); err != nil {
		return fmt.Errorf("default_sort: %w", err)
	}
	return nil
}

// Timeout is the per-request limit for store calls. Zero means none.
func (c Config) Timeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("request_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("request_timeout: must not be negative")
	}
	return d, nil
}

func (c Config) Sort() tasklist.SortCriterion {
	s, _ := tasklist.ParseSortCriterion(c.DefaultSort)
	return s
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		RequestTimeout: "0s",
		DefaultSort:    "none",
		Log: LogConfig{
			Path:  filepath.Join(dir, "tally.log"),
			Level: "info",
		},
		Server: ServerConfig{
			Addr:   DefaultServerAddr,
			DBPath: filepath.Join(dir, DefaultDBName),
		},
		Keys: Keymap{
			Quit:           "q",
			Add:            "a",
			Up:             "k",
			Down:           "j",
			Toggle:         " ",
			Delete:         "d",
			Detail:         "i",
			Confirm:        "enter",
			Cancel:         "esc",
			Search:         "/",
			FilterPriority: "f",
			SortNone:       "0",
			SortCreated:    "1",
			SortDue:        "2",
			SortPriority:   "3",
			NextField:      "tab",
			PrevField:      "shift+tab",
			Refresh:        "r",
		},
	}
}
