package cli

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/kelseyhightower/envconfig"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/editor"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/render/sink"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/session"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/store"
)

const configFile = "config.toml"

// Config is the merged configuration of all commands.
//
// An example config.toml:
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[editor]
//	move_threshold = 8
//
//	[render]
//	background = "#ffffff"
//	scale = 3
//
//	[server]
//	addr = ":9000"
type Config struct {
	Store    store.Config  `toml:"store" envconfig:"STORE"`
	Sessions SessionConfig `toml:"sessions" envconfig:"SESSIONS"`
	Editor   editor.Config `toml:"editor" envconfig:"EDITOR"`
	Render   RenderConfig  `toml:"render" envconfig:"RENDER"`
	Server   ServerConfig  `toml:"server" envconfig:"SERVER"`
}

// SessionConfig locates the CLI's editing sessions.
type SessionConfig struct {
	Dir string        `toml:"dir" envconfig:"DIR"`
	TTL time.Duration `toml:"ttl" envconfig:"TTL"`
}

// RenderConfig holds the export defaults.
type RenderConfig struct {
	Background     string  `toml:"background" envconfig:"BACKGROUND"`
	ConnectorColor string  `toml:"connector_color" envconfig:"CONNECTOR_COLOR"`
	FontFamily     string  `toml:"font_family" envconfig:"FONT_FAMILY"`
	Padding        float64 `toml:"padding" envconfig:"PADDING"`
	Scale          float64 `toml:"scale" envconfig:"SCALE"`
	NoCache        bool    `toml:"no_cache" envconfig:"NO_CACHE"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr       string        `toml:"addr" envconfig:"ADDR"`
	SessionTTL time.Duration `toml:"session_ttl" envconfig:"SESSION_TTL"`
}

func defaultConfig() Config {
	return Config{
		Store:    store.Config{Backend: store.BackendFile},
		Sessions: SessionConfig{TTL: session.DefaultTTL},
		Editor:   editor.DefaultConfig(),
		Render: RenderConfig{
			ConnectorColor: sink.DefaultConnectorColor,
			Scale:          2,
		},
		Server: ServerConfig{
			Addr:       "localhost:8080",
			SessionTTL: time.Hour,
		},
	}
}

// loadConfig layers the config file and the environment over the
// defaults. A missing file is not an error; an explicit path that cannot
// be read is.
func loadConfig(path string, logger *log.Logger) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err == nil {
			path = filepath.Join(dir, configFile)
		}
	}

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
			logger.Debug("loaded config", "path", path)
			for _, key := range md.Undecoded() {
				logger.Warn("unknown config key", "path", path, "key", key.String())
			}
		case stderrors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "environment overrides")
	}
	return cfg, nil
}

// renderOptions turns the render settings into sink options.
func (r RenderConfig) renderOptions() []sink.Option {
	var opts []sink.Option
	if r.Background != "" {
		opts = append(opts, sink.WithBackground(r.Background))
	}
	if r.ConnectorColor != "" {
		opts = append(opts, sink.WithConnectorColor(r.ConnectorColor))
	}
	if r.FontFamily != "" {
		opts = append(opts, sink.WithFontFamily(r.FontFamily))
	}
	if r.Padding > 0 {
		opts = append(opts, sink.WithPadding(r.Padding))
	}
	if r.Scale > 0 {
		opts = append(opts, sink.WithScale(r.Scale))
	}
	return opts
}
