package providers_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	"github.com/km-arc/go-scoped/framework/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameworkProviders_BindConfigAndLogger(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{App: config.AppConfig{Name: "Test"}}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := container.NewProviderRegistry()
	require.NoError(t, reg.Register(&providers.ConfigServiceProvider{Config: cfg}))
	require.NoError(t, reg.Register(&providers.LoggingServiceProvider{Logger: logger}))
	c, err := reg.Build()
	require.NoError(t, err)

	gotCfg, err := container.Resolve[*config.Config](c)
	require.NoError(t, err)
	assert.Same(t, cfg, gotCfg)

	aliased, err := container.ResolveAs[*config.Config](c, "config")
	require.NoError(t, err)
	assert.Same(t, cfg, aliased)

	gotLogger, err := container.ResolveAs[*slog.Logger](c, "logger")
	require.NoError(t, err)
	assert.Same(t, logger, gotLogger)

	assert.Contains(t, buf.String(), "container booted")
}

func TestLoggingServiceProvider_LogsFreshBuilds(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := container.NewProviderRegistry()
	require.NoError(t, reg.Register(&providers.LoggingServiceProvider{Logger: logger}))
	c, err := reg.Build()
	require.NoError(t, err)
	buf.Reset()

	// Pre-built instances are not built by the container, so nothing is logged.
	_, err = c.Make("logger")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestLoggingServiceProvider_HookFiresForOtherProviders(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := container.NewProviderRegistry()
	require.NoError(t, reg.Register(&providers.LoggingServiceProvider{Logger: logger}))
	require.NoError(t, reg.Register(&clockProvider{}))
	c, err := reg.Build()
	require.NoError(t, err)

	_, err = c.Make("clock")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "abstract=clock")
}

type clockProvider struct{ container.BaseProvider }

func (p *clockProvider) Register(b *container.Builder) {
	b.Singleton("clock", func(container.Resolver) (any, error) { return "tick", nil })
}
