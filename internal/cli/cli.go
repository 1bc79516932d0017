// Package cli implements the mindcanvas command-line interface.
//
// The commands are thin adapters over the editing core: every editing
// command resumes the map's session, dispatches one [editor.Command],
// then saves the map and the session. The same core is driven by the
// terminal browser (browse) and the HTTP API (serve).
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/mindcanvas/config.toml, then
// overridden by MINDCANVAS_* environment variables, then by flags.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context and injected into the editor.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/buildinfo"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/cache"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/editor"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/session"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mindcanvas"

	// envPrefix prefixes every environment override.
	envPrefix = "MINDCANVAS"
)

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
	Config Config

	// Persistent flag values, applied over the loaded configuration.
	configPath string
	backend    string
	storeDir   string
	sessionDir string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "mindcanvas edits mind maps of circles and rectangles",
		Long:              `mindcanvas is a mind-map canvas for the terminal: build a tree of connected circles and rectangles, edit it with undo and redo, persist it to a key-value store and export it to SVG, PNG, PDF, DOT or a text outline.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mindcanvas/config.toml)")
	flags.StringVar(&c.backend, "store", "", "map store backend: file, memory, redis, mongo, postgres")
	flags.StringVar(&c.storeDir, "store-dir", "", "directory of the file store")
	flags.StringVar(&c.sessionDir, "session-dir", "", "directory of editing sessions")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.showCommand())
	for _, cmd := range c.editCommands() {
		root.AddCommand(cmd)
	}
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.mapsCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and attaches the logger to the context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(c.configPath, c.Logger)
	if err != nil {
		return err
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
	}
	if c.storeDir != "" {
		cfg.Store.Dir = c.storeDir
	}
	if c.sessionDir != "" {
		cfg.Sessions.Dir = c.sessionDir
	}
	if dir, err := configDir(); err == nil {
		if cfg.Store.Dir == "" {
			cfg.Store.Dir = filepath.Join(dir, "maps")
		}
		if cfg.Sessions.Dir == "" {
			cfg.Sessions.Dir = filepath.Join(dir, "sessions")
		}
	}
	c.Config = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Factories
// =============================================================================

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	c.Logger.Debug("opening map store", "backend", c.Config.Store.Backend)
	return store.Open(ctx, c.Config.Store)
}

func (c *CLI) openSessions() (*session.FileStore, error) {
	return session.NewFileStore(c.Config.Sessions.Dir)
}

func (c *CLI) editorOptions() []editor.Option {
	return []editor.Option{
		editor.WithLogger(c.Logger),
		editor.WithConfig(c.Config.Editor),
	}
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mindcanvas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the configuration directory (~/.config/mindcanvas/).
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
