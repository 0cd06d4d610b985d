// Package cli implements the waymark command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wbkit/waymark/pkg/buildinfo"
	"github.com/wbkit/waymark/pkg/store"
	"github.com/wbkit/waymark/pkg/wayback"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "waymark"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string  // --config override, empty for the XDG default
	cfg        *Config // loaded in the root PersistentPreRun
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Waymark retrieves historical webpage snapshots from the web archive",
		Long: `Waymark is a client for the public web archive. It discovers when a page
was captured, fetches the archived HTML for a chosen capture, and keeps a
local library of snapshots you decided to save.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/waymark/config.toml)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.bulkCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Collaborator Factories
// =============================================================================

// newClient builds the archive client from the effective configuration.
func (c *CLI) newClient() *wayback.Client {
	return wayback.NewClient(wayback.Config{
		IndexURL:   c.cfg.Client.IndexURL,
		WebURL:     c.cfg.Client.WebURL,
		UserAgent:  c.cfg.Client.UserAgent,
		Timeout:    c.cfg.Client.Timeout.Duration,
		MaxRetries: c.cfg.Client.MaxRetries,
	})
}

// openStore opens the configured library backend (sqlite unless the config
// selects mongo).
func (c *CLI) openStore(cmd *cobra.Command) (store.Store, error) {
	if c.cfg.Library.Backend == "mongo" {
		return store.NewMongo(cmd.Context(), c.cfg.Library.MongoURI, c.cfg.Library.MongoDB)
	}

	path := c.cfg.Library.Path
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "library.db")
	}
	return store.NewSQLite(path)
}

// =============================================================================
// Paths
// =============================================================================

// dataDir returns the data directory using XDG standard (~/.local/share/waymark/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/waymark/).
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
