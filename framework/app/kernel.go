package app

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	"github.com/km-arc/go-scoped/framework/diag"
	"github.com/km-arc/go-scoped/framework/providers"
)

// Options tune how the application bootstraps.
type Options struct {
	EnvFiles []string  // dotenv files; empty means ".env" if present
	LogLevel string    // overrides LOG_LEVEL when set
	LogOut   io.Writer // defaults to os.Stderr
}

// Application is the top-level application container. It embeds the built
// Container so user code can call app.Make, app.InScope and app.Close
// directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	config *config.Config
	logger *slog.Logger
}

// New loads configuration, builds the root logger, registers the framework
// providers followed by the given ones and builds the container.
func New(opts Options, appProviders ...container.ServiceProvider) (*Application, error) {
	cfg, err := config.Load(opts.EnvFiles...)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	out := opts.LogOut
	if out == nil {
		out = os.Stderr
	}
	logger, err := diag.NewRootLogger(cfg.Log, out)
	if err != nil {
		return nil, err
	}

	registry := container.NewProviderRegistry()
	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: logger},
	}
	var errs []error
	for _, p := range append(core, appProviders...) {
		errs = append(errs, registry.Register(p))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	c, err := registry.Build()
	if err != nil {
		return nil, err
	}
	logger.Debug("application booted", "name", cfg.App.Name, "env", cfg.App.Env)

	return &Application{
		Container: c,
		Providers: registry,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the root logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }
