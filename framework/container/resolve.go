package container

import "fmt"

// ── Generics helpers ──────────────────────────────────────────────────────────

// Provide registers a typed factory under Key[T]().
//
//	container.Provide(b, container.Scoped, func(r container.Resolver) (*Service, error) {
//	    calc, err := container.Resolve[Calculator](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewService(calc), nil
//	}, container.Key[Calculator]())
func Provide[T any](b *Builder, lifetime Lifetime, factory func(r Resolver) (T, error), deps ...string) {
	key := Key[T]()
	if factory == nil {
		b.bind(key, nil, lifetime, deps)
		return
	}
	b.bind(key, func(r Resolver) (any, error) { return factory(r) }, lifetime, deps)
}

// Resolve resolves Key[T]() and type-asserts the result.
//
//	// Instead of: v, err := s.Make(container.Key[*config.Config]()); cfg := v.(*config.Config)
//	// Write:      cfg, err := container.Resolve[*config.Config](s)
func Resolve[T any](r Resolver) (T, error) {
	return ResolveAs[T](r, Key[T]())
}

// ResolveAs resolves an explicit abstract (or alias) and type-asserts the result.
func ResolveAs[T any](r Resolver, abstract string) (T, error) {
	var zero T
	instance, err := r.Make(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: [%s] resolved to %T, want %s", ErrTypeMismatch, abstract, instance, Key[T]())
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Useful in Boot hooks and
// tests where a missing binding is a programming error.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}
