package container

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// ── Errors ────────────────────────────────────────────────────────────────────

var (
	// ErrBindingNotFound is returned when a key has no registered binding.
	ErrBindingNotFound = errors.New("container: binding not found")

	// ErrContextClosed is returned when resolving from a closed scope or container.
	ErrContextClosed = errors.New("container: already closed")

	// ErrScopeViolation is returned when a wider-lifetime binding depends on a
	// scoped one, or when a scoped binding is resolved without an open scope.
	ErrScopeViolation = errors.New("container: scope violation")

	// ErrCircularDependency is returned when a binding depends on itself.
	ErrCircularDependency = errors.New("container: circular dependency")

	// ErrDuplicateBinding is returned by Build when a key is registered twice.
	ErrDuplicateBinding = errors.New("container: duplicate binding")

	// ErrScopeNotOpen is returned when resolving from a scope that was never opened.
	ErrScopeNotOpen = errors.New("container: scope not open")

	// ErrRegistrySealed is returned when registering into an already built registry.
	ErrRegistrySealed = errors.New("container: registry already built")

	// ErrTypeMismatch is returned by the typed helpers when the resolved value
	// does not have the requested type.
	ErrTypeMismatch = errors.New("container: type mismatch")
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Lifetime tells the container how long a resolved instance lives.
type Lifetime int

const (
	// Singleton instances are built once and shared by the whole process.
	Singleton Lifetime = iota + 1
	// Scoped instances are built once per Scope.
	Scoped
	// Transient instances are built on every resolution.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("Lifetime(%d)", int(l))
	}
}

// Resolver is handed to factories and extenders so they can resolve their
// own dependencies. Both *Container and *Scope implement it.
type Resolver interface {
	Make(abstract string) (any, error)
}

// Factory builds a concrete value.
type Factory func(r Resolver) (any, error)

// Extender decorates a freshly built instance.
type Extender func(instance any, r Resolver) (any, error)

// binding holds a registered factory, its lifetime and declared dependencies.
type binding struct {
	key      string
	factory  Factory
	lifetime Lifetime
	deps     []string

	// prebuilt is set for Instance registrations. Such values are owned by
	// the caller and never released by the container.
	prebuilt bool
}

// ── Builder ───────────────────────────────────────────────────────────────────

// Builder collects bindings. Build validates them and returns an immutable
// Container. Registration problems are recorded and reported by Build.
type Builder struct {
	bindings       map[string]*binding
	instances      map[string]any
	aliases        map[string]string
	extenders      map[string][]Extender
	afterResolving []func(abstract string, instance any)

	errs  []error
	built bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		bindings:  make(map[string]*binding),
		instances: make(map[string]any),
		aliases:   make(map[string]string),
		extenders: make(map[string][]Extender),
	}
}

// Bind registers a transient factory (new instance on every resolution).
//
//	b.Bind("clock", func(r container.Resolver) (any, error) { return time.Now, nil })
func (b *Builder) Bind(abstract string, factory Factory, deps ...string) {
	b.bind(abstract, factory, Transient, deps)
}

// Singleton registers a factory whose result is shared by the whole process.
//
//	b.Singleton("cache", func(r container.Resolver) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.New(cfg), nil
//	}, container.Key[*config.Config]())
func (b *Builder) Singleton(abstract string, factory Factory, deps ...string) {
	b.bind(abstract, factory, Singleton, deps)
}

// Scoped registers a factory whose result is cached per Scope.
func (b *Builder) Scoped(abstract string, factory Factory, deps ...string) {
	b.bind(abstract, factory, Scoped, deps)
}

// Instance registers a pre-built value as a singleton.
//
//	b.Instance(container.Key[*config.Config](), cfg)
func (b *Builder) Instance(abstract string, instance any) {
	value := instance
	if !b.add(&binding{
		key:      abstract,
		factory:  func(Resolver) (any, error) { return value, nil },
		lifetime: Singleton,
		prebuilt: true,
	}) {
		return
	}
	b.instances[abstract] = instance
}

// Alias registers an alternative name for an abstract.
//
//	b.Alias(container.Key[*slog.Logger](), "logger")
func (b *Builder) Alias(abstract, alias string) {
	if b.sealed() {
		return
	}
	if abstract == alias {
		b.errs = append(b.errs, fmt.Errorf("container: [%s] is aliased to itself", abstract))
		return
	}
	if b.taken(alias) {
		b.errs = append(b.errs, fmt.Errorf("%w [%s]", ErrDuplicateBinding, alias))
		return
	}
	b.aliases[alias] = abstract
}

// Extend decorates every freshly built instance of an abstract. deps lists the
// keys the extender resolves, so Build can validate them.
//
//	b.Extend(container.Key[Calculator](), func(inst any, r container.Resolver) (any, error) {
//	    return &LoggedCalculator{Inner: inst.(Calculator)}, nil
//	})
func (b *Builder) Extend(abstract string, fn Extender, deps ...string) {
	if b.sealed() {
		return
	}
	b.extenders[abstract] = append(b.extenders[abstract], fn)
	if bd, ok := b.bindings[abstract]; ok {
		bd.deps = append(bd.deps, deps...)
		return
	}
	// Extending a key registered later (or never) is checked by Build.
	if pending, ok := b.bindings[extendOnlyKey(abstract)]; ok {
		pending.deps = append(pending.deps, deps...)
		return
	}
	b.bindings[extendOnlyKey(abstract)] = &binding{key: abstract, deps: slices.Clone(deps)}
}

// AfterResolving registers a callback fired after any abstract is built.
func (b *Builder) AfterResolving(cb func(abstract string, instance any)) {
	if b.sealed() {
		return
	}
	b.afterResolving = append(b.afterResolving, cb)
}

// bind is the internal registration helper.
func (b *Builder) bind(abstract string, factory Factory, lifetime Lifetime, deps []string) {
	if factory == nil {
		b.errs = append(b.errs, fmt.Errorf("container: nil factory for [%s]", abstract))
		return
	}
	b.add(&binding{key: abstract, factory: factory, lifetime: lifetime, deps: slices.Clone(deps)})
}

func (b *Builder) add(bd *binding) bool {
	if b.sealed() {
		return false
	}
	if b.taken(bd.key) {
		b.errs = append(b.errs, fmt.Errorf("%w [%s]", ErrDuplicateBinding, bd.key))
		return false
	}
	// Merge deps declared by an earlier Extend call.
	if ext, ok := b.bindings[extendOnlyKey(bd.key)]; ok {
		bd.deps = append(bd.deps, ext.deps...)
		delete(b.bindings, extendOnlyKey(bd.key))
	}
	b.bindings[bd.key] = bd
	return true
}

func (b *Builder) taken(key string) bool {
	if _, ok := b.bindings[key]; ok {
		return true
	}
	_, ok := b.aliases[key]
	return ok
}

func (b *Builder) sealed() bool {
	if b.built {
		b.errs = append(b.errs, ErrRegistrySealed)
	}
	return b.built
}

// extendOnlyKey holds deps of an Extend call whose binding is not registered yet.
func extendOnlyKey(abstract string) string { return "\x00extend:" + abstract }

// Build validates the registered bindings and returns the container.
//
// It reports, joined together:
//   - duplicate keys (ErrDuplicateBinding)
//   - aliases, extenders or declared dependencies without a binding (ErrBindingNotFound)
//   - dependency cycles (ErrCircularDependency)
//   - singletons that depend on scoped bindings, directly or through
//     transients (ErrScopeViolation)
func (b *Builder) Build() (*Container, error) {
	if b.built {
		return nil, ErrRegistrySealed
	}
	b.built = true

	errs := slices.Clone(b.errs)
	for k, bd := range b.bindings {
		if k != bd.key {
			errs = append(errs, fmt.Errorf("%w [%s]: extended but never registered", ErrBindingNotFound, bd.key))
		}
	}
	flat := make(map[string]string, len(b.aliases))
	for alias := range b.aliases {
		target, err := b.followAlias(alias)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := b.bindings[target]; !ok {
			errs = append(errs, fmt.Errorf("%w [%s]: target of alias [%s]", ErrBindingNotFound, target, alias))
			continue
		}
		flat[alias] = target
	}
	b.aliases = flat
	errs = append(errs, b.validateGraph()...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	c := &Container{
		bindings:       b.bindings,
		aliases:        b.aliases,
		extenders:      b.extenders,
		afterResolving: b.afterResolving,
		instances:      make(map[string]any, len(b.bindings)),
	}
	for k, v := range b.instances {
		c.instances[k] = v
	}
	return c, nil
}

// followAlias walks an alias chain to the key it ends on.
func (b *Builder) followAlias(alias string) (string, error) {
	path := []string{alias}
	key := b.aliases[alias]
	for {
		next, ok := b.aliases[key]
		if !ok {
			return key, nil
		}
		if slices.Contains(path, key) {
			return "", fmt.Errorf("%w: alias loop %v", ErrCircularDependency, append(path, key))
		}
		path = append(path, key)
		key = next
	}
}

// canonical resolves one alias hop. Build flattens chains, so after it one
// hop reaches the binding.
func (b *Builder) canonical(abstract string) string {
	if target, ok := b.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// validateGraph walks declared dependencies. It computes for every binding
// whether it transitively needs a scope and flags cycles and singletons that
// need one.
func (b *Builder) validateGraph() []error {
	const (
		unvisited = iota
		visiting
		done
	)
	var (
		errs      []error
		state     = make(map[string]int, len(b.bindings))
		needScope = make(map[string]bool, len(b.bindings))
		reported  = make(map[string]bool)
	)

	var visit func(key string, path []string) bool
	visit = func(key string, path []string) bool {
		switch state[key] {
		case visiting:
			if !reported[key] {
				reported[key] = true
				cycle := slices.Concat(path[slices.Index(path, key):], []string{key})
				errs = append(errs, fmt.Errorf("%w: %v", ErrCircularDependency, cycle))
			}
			return false
		case done:
			return needScope[key]
		}
		state[key] = visiting
		bd := b.bindings[key]
		scoped := bd.lifetime == Scoped
		for _, dep := range bd.deps {
			depKey := b.canonical(dep)
			if _, ok := b.bindings[depKey]; !ok {
				errs = append(errs, fmt.Errorf("%w [%s]: dependency of [%s]", ErrBindingNotFound, dep, key))
				continue
			}
			if visit(depKey, append(path, key)) {
				if bd.lifetime == Singleton {
					errs = append(errs, fmt.Errorf("%w: singleton [%s] depends on scoped [%s]", ErrScopeViolation, key, dep))
					continue
				}
				scoped = true
			}
		}
		state[key] = done
		needScope[key] = scoped
		return scoped
	}

	keys := lo.Keys(b.bindings)
	slices.Sort(keys)
	for _, k := range keys {
		if k != b.bindings[k].key {
			continue
		}
		visit(k, nil)
	}
	return errs
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the built, immutable registry. It owns the singleton cache
// and opens scopes.
type Container struct {
	// immutable after Build
	bindings       map[string]*binding
	aliases        map[string]string
	extenders      map[string][]Extender
	afterResolving []func(string, any)

	mu        sync.Mutex
	instances map[string]any
	owned     []any // built singletons in creation order
	closed    bool

	// buildMu is held by the outermost singleton build of a resolution.
	buildMu sync.Mutex
}

// Make resolves an abstract without a scope. Singletons and transients
// resolve; scoped bindings fail with ErrScopeViolation.
func (c *Container) Make(abstract string) (any, error) {
	if c.isClosed() {
		return nil, fmt.Errorf("%w: container", ErrContextClosed)
	}
	return (&resolution{c: c}).Make(abstract)
}

// NewScope returns an unopened scope.
func (c *Container) NewScope() *Scope {
	return &Scope{c: c, instances: make(map[string]any)}
}

// Enter returns an opened scope. The caller must Close it.
//
//	scope, err := c.Enter()
//	if err != nil {
//	    return err
//	}
//	defer scope.Close()
func (c *Container) Enter() (*Scope, error) {
	s := c.NewScope()
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// InScope opens a scope, runs fn and closes the scope on every exit path.
// The close error is joined with fn's error.
func (c *Container) InScope(fn func(s *Scope) error) (err error) {
	s, err := c.Enter()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return fn(s)
}

// Close releases every built singleton implementing io.Closer in reverse
// creation order. Pre-built instances are left to their owner. Close is
// idempotent.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	owned := c.owned
	c.owned = nil
	c.instances = make(map[string]any)
	c.mu.Unlock()

	return release(owned)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract (or alias) has been registered.
func (c *Container) Bound(abstract string) bool {
	_, ok := c.bindings[c.canonical(abstract)]
	return ok
}

// Resolved returns true if a singleton abstract has been built or was
// registered with Instance.
func (c *Container) Resolved(abstract string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Lifetime reports the lifetime of an abstract.
func (c *Container) Lifetime(abstract string) (Lifetime, bool) {
	bd, ok := c.bindings[c.canonical(abstract)]
	if !ok {
		return 0, false
	}
	return bd.lifetime, true
}

// Bindings returns all registered keys and aliases, sorted.
func (c *Container) Bindings() []string {
	out := append(lo.Keys(c.bindings), lo.Keys(c.aliases)...)
	slices.Sort(out)
	return out
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

func (c *Container) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// Key returns the package-qualified name of T, used as the abstract key of
// typed registrations.
//
//	container.Key[app.Calculator]()   // "github.com/km-arc/go-scoped/app.Calculator"
//	container.Key[*config.Config]()   // "*github.com/km-arc/go-scoped/framework/config.Config"
func Key[T any]() string {
	return typeKey(reflect.TypeFor[T]())
}

func typeKey(t reflect.Type) string {
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		return "*" + typeKey(t.Elem())
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
