package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ckanindex/pkg/buildinfo"
	"github.com/matzehuels/ckanindex/pkg/catalog"
	"github.com/matzehuels/ckanindex/pkg/integrations"
	"github.com/matzehuels/ckanindex/pkg/integrations/ckan"
)

// envBaseURL overrides the catalog base URL from the environment.
const envBaseURL = "CKANINDEX_BASE_URL"

// Config is the on-disk configuration, usually ~/.config/ckanindex/config.toml:
//
//	base_url   = "https://data.gov.uk/api/3/action"
//	timeout    = "30s"
//	attempts   = 2
//	page_size  = 100
//	workers    = 4
//	user_agent = "my-crawler/1.0"
//	listen     = ":8080"
type Config struct {
	BaseURL   string   `toml:"base_url"`
	Timeout   duration `toml:"timeout"`
	Attempts  int      `toml:"attempts"`
	PageSize  int      `toml:"page_size"`
	Workers   int      `toml:"workers"`
	UserAgent string   `toml:"user_agent"`
	Listen    string   `toml:"listen"`
}

// duration decodes TOML strings such as "30s" or "1m30s".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		BaseURL:   ckan.DefaultBaseURL,
		Timeout:   duration{integrations.DefaultTimeout},
		Attempts:  1,
		PageSize:  catalog.DefaultPageSize,
		Workers:   catalog.DefaultWorkers,
		UserAgent: buildinfo.UserAgent(),
		Listen:    "127.0.0.1:8080",
	}
}

// loadConfig layers the config file at path and the environment over the
// defaults. A missing file is not an error unless path was given explicitly.
// Unknown keys are returned so the caller can warn about them.
func loadConfig(path string, explicit bool) (Config, []string, error) {
	cfg := defaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, nil, fmt.Errorf("load config %s: %w", path, err)
	}

	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}

	if v := strings.TrimSpace(os.Getenv(envBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	return cfg, unknown, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("config: base_url cannot be empty")
	case c.Timeout.Duration <= 0:
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout.Duration)
	case c.Attempts < 1:
		return fmt.Errorf("config: attempts must be at least 1, got %d", c.Attempts)
	case c.PageSize < 1:
		return fmt.Errorf("config: page_size must be at least 1, got %d", c.PageSize)
	case c.Workers < 1:
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// writeConfig encodes cfg as TOML to path, creating parent directories.
func writeConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// configDir returns the config directory using XDG standard (~/.config/ckanindex/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// defaultConfigPath returns the config file location inside configDir.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
