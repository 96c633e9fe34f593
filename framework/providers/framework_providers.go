package providers

import (
	"log/slog"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Bound abstracts:
//   - Key[*config.Config]  → *config.Config
//   - "config"             → alias
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(b *container.Builder) {
	b.Instance(container.Key[*config.Config](), p.Config)
	b.Alias(container.Key[*config.Config](), "config")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the root logger and logs every fresh build at
// debug level.
//
// Bound abstracts:
//   - Key[*slog.Logger]  → *slog.Logger
//   - "logger"           → alias
type LoggingServiceProvider struct {
	Logger *slog.Logger
}

func (p *LoggingServiceProvider) Register(b *container.Builder) {
	logger := p.Logger
	b.Instance(container.Key[*slog.Logger](), logger)
	b.Alias(container.Key[*slog.Logger](), "logger")
	b.AfterResolving(func(abstract string, _ any) {
		logger.Debug("resolved", "abstract", abstract)
	})
}

func (p *LoggingServiceProvider) Boot(c *container.Container) error {
	p.Logger.Debug("container booted", "bindings", c.Bindings())
	return nil
}
