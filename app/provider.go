package app

import (
	"log/slog"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
)

// ServiceProvider binds the demo services.
//
// Bound abstracts:
//   - Key[RandomSource]  singleton, Source or DefaultSource()
//   - Key[Calculator]    singleton *RandomCalculator wrapped in *LoggedCalculator
//   - Key[Symbol]        scoped, one draw per scope
//   - Key[*Service]      scoped
type ServiceProvider struct {
	container.BaseProvider

	// Source replaces the default random source, mostly in tests.
	Source RandomSource
}

func (p *ServiceProvider) Register(b *container.Builder) {
	source := p.Source
	if source == nil {
		source = DefaultSource()
	}
	b.Instance(container.Key[RandomSource](), source)

	container.Provide(b, container.Singleton, func(r container.Resolver) (Calculator, error) {
		cfg, err := container.Resolve[*config.Config](r)
		if err != nil {
			return nil, err
		}
		src, err := container.Resolve[RandomSource](r)
		if err != nil {
			return nil, err
		}
		return NewRandomCalculator(src, cfg.Random.FactorMax), nil
	}, container.Key[*config.Config](), container.Key[RandomSource]())

	b.Extend(container.Key[Calculator](), func(inst any, r container.Resolver) (any, error) {
		logger, err := container.Resolve[*slog.Logger](r)
		if err != nil {
			return nil, err
		}
		return &LoggedCalculator{Inner: inst.(Calculator), Logger: logger}, nil
	}, container.Key[*slog.Logger]())

	container.Provide(b, container.Scoped, func(r container.Resolver) (Symbol, error) {
		cfg, err := container.Resolve[*config.Config](r)
		if err != nil {
			return "", err
		}
		src, err := container.Resolve[RandomSource](r)
		if err != nil {
			return "", err
		}
		return NewSymbol(src, cfg.Random.SymbolMin, cfg.Random.SymbolMax)
	}, container.Key[*config.Config](), container.Key[RandomSource]())

	container.Provide(b, container.Scoped, func(r container.Resolver) (*Service, error) {
		calc, err := container.Resolve[Calculator](r)
		if err != nil {
			return nil, err
		}
		symbol, err := container.Resolve[Symbol](r)
		if err != nil {
			return nil, err
		}
		return NewService(calc, symbol), nil
	}, container.Key[Calculator](), container.Key[Symbol]())
}
