// Package container provides a small IoC container with lifetimes, scopes
// and service providers.
//
// # Overview
//
// Bindings are declared on a Builder, validated once by Build and sealed in
// an immutable Container. Every binding has a lifetime:
//
//   - Singleton: built once, shared by the process, released by Container.Close
//   - Scoped: built once per Scope, released by Scope.Close
//   - Transient: built on every resolution
//
// There is no reflection-based auto-wiring. Factories resolve their own
// dependencies through the Resolver they receive and declare the keys they
// need so Build can check the graph.
//
// # Container Lifecycle
//
//  1. Register providers: registry.Register(&MyProvider{})
//  2. Build: c, err := registry.Build()   — validated, sealed, providers booted
//  3. Open a scope per unit of work: c.InScope(func(s *container.Scope) error { ... })
//  4. Close: c.Close()
//
// # Bindings
//
//	b := container.NewBuilder()
//
//	// Transient — new instance every Make()
//	b.Bind("clock", func(r container.Resolver) (any, error) { return time.Now, nil })
//
//	// Singleton — created once, reused
//	container.Provide(b, container.Singleton, func(r container.Resolver) (Calculator, error) {
//	    return NewRandomCalculator(DefaultSource(), 100), nil
//	})
//
//	// Scoped — one per Scope
//	container.Provide(b, container.Scoped, func(r container.Resolver) (*Service, error) {
//	    calc, err := container.Resolve[Calculator](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewService(calc), nil
//	}, container.Key[Calculator]())
//
//	// Pre-built value
//	b.Instance(container.Key[*config.Config](), cfg)
//
//	// Alias
//	b.Alias(container.Key[*config.Config](), "config")
//
// # Validation
//
// Build reports every problem at once: duplicate keys (ErrDuplicateBinding),
// unknown dependencies (ErrBindingNotFound), cycles (ErrCircularDependency)
// and singletons depending on scoped bindings (ErrScopeViolation).
//
// # Resolving
//
//	err := c.InScope(func(s *container.Scope) error {
//	    svc, err := container.Resolve[*Service](s)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(svc.Call())
//	    return nil
//	})
//
// Resolving from a scope that was never opened fails with ErrScopeNotOpen;
// from a closed scope or container with ErrContextClosed. Factories must
// resolve through the Resolver argument, never through a captured Scope or
// Container, or the resolution deadlocks.
//
// # Release
//
// Instances implementing io.Closer are closed in reverse creation order when
// their owner closes. Values registered with Instance belong to the caller.
//
// # Extend / Decorate
//
//	b.Extend(container.Key[Calculator](), func(inst any, r container.Resolver) (any, error) {
//	    return &LoggedCalculator{Inner: inst.(Calculator)}, nil
//	})
package container
