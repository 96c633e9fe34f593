package container

import "fmt"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related bindings.
//
// Register is called before the container is built and must only declare
// bindings. Boot is called once the container is built, in registration
// order, and may resolve anything.
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(b *container.Builder) {
//	    container.Provide(b, container.Singleton, func(r container.Resolver) (*Mailer, error) {
//	        cfg, err := container.Resolve[*config.Config](r)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return NewMailer(cfg), nil
//	    }, container.Key[*config.Config]())
//	}
type ServiceProvider interface {
	Register(b *Builder)
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(b *container.Builder) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry collects providers, builds the container once and boots
// the providers against it.
type ProviderRegistry struct {
	builder    *Builder
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	container  *Container
	booted     bool
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		builder:    NewBuilder(),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. Registering the
// same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.builder.built {
		return fmt.Errorf("%w: registering %T", ErrRegistrySealed, provider)
	}
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true
	provider.Register(r.builder)
	r.providers = append(r.providers, provider)
	return nil
}

// Build validates the bindings, seals the registry and boots every provider.
// If a provider fails to boot, the container is closed and the error returned.
func (r *ProviderRegistry) Build() (*Container, error) {
	c, err := r.builder.Build()
	if err != nil {
		return nil, err
	}
	r.container = c

	for _, provider := range r.providers {
		if err := provider.Boot(c); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("container: booting %T: %w", provider, err)
		}
	}
	r.booted = true
	return c, nil
}

// Booted returns true once Build has succeeded and every provider booted.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
