package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/wbkit/waymark/pkg/wayback"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Duration wraps time.Duration so TOML values can be written as "90s".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler for config show.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the on-disk configuration. Flags override file values, file
// values override defaults.
type Config struct {
	Client  ClientConfig  `toml:"client"`
	Library LibraryConfig `toml:"library"`
	Serve   ServeConfig   `toml:"serve"`
}

// ClientConfig configures the archive client.
type ClientConfig struct {
	IndexURL   string   `toml:"index_url"`
	WebURL     string   `toml:"web_url"`
	UserAgent  string   `toml:"user_agent"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

// LibraryConfig configures the saved-snapshot store.
type LibraryConfig struct {
	Backend  string `toml:"backend"` // "sqlite" (default) or "mongo"
	Path     string `toml:"path"`    // sqlite file; empty for the XDG default
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// ServeConfig configures the HTTP API mode.
type ServeConfig struct {
	Addr         string `toml:"addr"`
	Workers      int    `toml:"workers"`
	QueueBackend string `toml:"queue_backend"` // "memory" (default) or "redis"
	RedisAddr    string `toml:"redis_addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Timeout:    Duration{wayback.DefaultTimeout},
			MaxRetries: wayback.DefaultMaxRetries,
		},
		Library: LibraryConfig{
			Backend: "sqlite",
			MongoDB: appName,
		},
		Serve: ServeConfig{
			Addr:         ":8464",
			Workers:      4,
			QueueBackend: "memory",
			RedisAddr:    "localhost:6379",
		},
	}
}

// LoadConfig reads the config file at path (or the XDG default when path is
// empty) on top of the defaults. A missing default file is not an error; a
// missing explicit --config file is.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// =============================================================================
// Config Command
// =============================================================================

// defaultConfigTOML is the commented file written by "config init".
const defaultConfigTOML = `# waymark configuration

[client]
# Per-request timeout; each retry attempt gets a fresh budget.
timeout = "2m"
# Retries after a rate-limited (429) response; delays double from 2s.
max_retries = 3
# Override the archive endpoints, e.g. for a self-hosted mirror.
# index_url = "https://web.archive.org/cdx/search/cdx"
# web_url = "https://web.archive.org/web"
# user_agent = "waymark/1.0"

[library]
# backend = "sqlite"      # or "mongo" for shared deployments
# path = ""               # sqlite file; defaults to the XDG data dir
# mongo_uri = "mongodb://localhost:27017"
# mongo_db = "waymark"

[serve]
# addr = ":8464"
# workers = 4
# queue_backend = "memory" # or "redis" for external workers
# redis_addr = "localhost:6379"
`

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the waymark configuration file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := configDir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			path := filepath.Join(dir, "config.toml")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(defaultConfigTOML), 0o644); err != nil {
				return err
			}

			printSuccess("Wrote default config")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

// configShowCommand creates the "config show" subcommand, printing the
// effective configuration after defaults and file merging.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := toml.NewEncoder(&buf).Encode(c.cfg); err != nil {
				return err
			}
			fmt.Print(buf.String())
			return nil
		},
	}
}
