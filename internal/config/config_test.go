package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/tasklist"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected base url %s, got %s", DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.Keys.Toggle != " " || cfg.Keys.Quit != "q" {
		t.Errorf("unexpected default keys: %+v", cfg.Keys)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again != cfg {
		t.Errorf("expected round trip to keep the config\nwant %+v\ngot  %+v", cfg, again)
	}
}

func TestLoadOrCreateReadsOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	body := `
base_url = "http://todo.internal:9000"
request_timeout = "3s"
default_sort = "priority"

[keys]
quit = "x"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.BaseURL != "http://todo.internal:9000" {
		t.Errorf("unexpected base url %s", cfg.BaseURL)
	}
	if d, _ := cfg.Timeout(); d != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", d)
	}
	if cfg.Sort() != tasklist.SortPriority {
		t.Errorf("expected priority sort, got %v", cfg.Sort())
	}
	if cfg.Keys.Quit != "x" {
		t.Errorf("expected quit override, got %q", cfg.Keys.Quit)
	}
	if cfg.Keys.Add != "a" {
		t.Errorf("expected unset keys to keep defaults, got %q", cfg.Keys.Add)
	}
	if cfg.Server.DBPath != filepath.Join(dir, DefaultDBName) {
		t.Errorf("unexpected db path %s", cfg.Server.DBPath)
	}
}

func TestLoadOrCreateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad timeout":      `request_timeout = "soon"`,
		"negative timeout": `request_timeout = "-1s"`,
		"unknown sort":     `default_sort = "alphabetical"`,
		"broken toml":      `base_url = `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigFileName)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadOrCreate(path); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestResolveConfigPathHonorsEnv(t *testing.T) {
	t.Setenv(ConfigEnv, "/tmp/custom.toml")
	if got := ResolveConfigPath(); got != "/tmp/custom.toml" {
		t.Fatalf("expected env path, got %s", got)
	}
}
