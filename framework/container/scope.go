package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
)

// State is the lifecycle state of a Scope.
type State int

const (
	Unopened State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Scope is a resolution context. Scoped bindings are built at most once per
// scope and released when it closes. A scope is meant for one unit of work,
// such as a request, and is not shared across units of work.
type Scope struct {
	c *Container

	mu        sync.Mutex
	state     State
	instances map[string]any
	owned     []any // closable scoped and transient instances in creation order
}

// Container returns the container the scope was opened from.
func (s *Scope) Container() *Container { return s.c }

// State returns the current lifecycle state.
func (s *Scope) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open moves an unopened scope to Open. Opening an open scope is a no-op.
func (s *Scope) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Closed:
		return fmt.Errorf("%w: scope", ErrContextClosed)
	case Open:
		return nil
	}
	if s.c.isClosed() {
		return fmt.Errorf("%w: container", ErrContextClosed)
	}
	s.state = Open
	return nil
}

// Make resolves an abstract within the scope.
func (s *Scope) Make(abstract string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Unopened:
		return nil, fmt.Errorf("%w: resolving [%s]", ErrScopeNotOpen, abstract)
	case Closed:
		return nil, fmt.Errorf("%w: resolving [%s]", ErrContextClosed, abstract)
	}
	if s.c.isClosed() {
		return nil, fmt.Errorf("%w: container", ErrContextClosed)
	}
	return (&resolution{c: s.c, scope: s}).Make(abstract)
}

// Close releases every instance built in the scope that implements
// io.Closer, in reverse creation order, and invalidates the scope.
// Close is idempotent.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return nil
	}
	s.state = Closed
	owned := s.owned
	s.owned = nil
	s.instances = nil
	s.mu.Unlock()

	return release(owned)
}

// release closes owned instances in reverse order and joins their errors.
func release(owned []any) error {
	var errs []error
	for _, inst := range slices.Backward(owned) {
		if closer, ok := inst.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// ── Context ───────────────────────────────────────────────────────────────────

type scopeCtxKey struct{}

// NewContext returns a copy of ctx carrying the scope.
func NewContext(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, s)
}

// FromContext returns the scope stored in ctx, if any.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeCtxKey{}).(*Scope)
	return s, ok
}

// ── Resolution ────────────────────────────────────────────────────────────────

// resolution is the Resolver passed to factories during one top-level Make.
// scope is nil while building singletons, so scoped keys are out of reach.
type resolution struct {
	c          *Container
	scope      *Scope
	stack      []string
	holdsBuild bool
}

func (r *resolution) Make(abstract string) (any, error) {
	key := r.c.canonical(abstract)
	bd, ok := r.c.bindings[key]
	if !ok {
		return nil, fmt.Errorf("%w [%s]", ErrBindingNotFound, abstract)
	}
	if slices.Contains(r.stack, key) {
		return nil, fmt.Errorf("%w: %v", ErrCircularDependency, append(slices.Clone(r.stack), key))
	}

	switch bd.lifetime {
	case Singleton:
		return r.singleton(bd)
	case Scoped:
		if r.scope == nil {
			if len(r.stack) > 0 {
				return nil, fmt.Errorf("%w: [%s] resolves scoped [%s]", ErrScopeViolation, r.stack[len(r.stack)-1], key)
			}
			return nil, fmt.Errorf("%w: scoped [%s] needs an open scope", ErrScopeViolation, key)
		}
		if inst, ok := r.scope.instances[key]; ok {
			return inst, nil
		}
		inst, err := r.build(bd)
		if err != nil {
			return nil, err
		}
		r.scope.instances[key] = inst
		r.own(inst)
		return inst, nil
	default:
		inst, err := r.build(bd)
		if err != nil {
			return nil, err
		}
		r.own(inst)
		return inst, nil
	}
}

// singleton returns the cached instance or builds it under the build lock.
func (r *resolution) singleton(bd *binding) (any, error) {
	if inst, ok, err := r.c.cached(bd.key); ok || err != nil {
		return inst, err
	}

	sub := &resolution{c: r.c, stack: slices.Clone(r.stack), holdsBuild: true}
	if !r.holdsBuild {
		r.c.buildMu.Lock()
		defer r.c.buildMu.Unlock()
		// Another scope may have built it while we waited.
		if inst, ok, err := r.c.cached(bd.key); ok || err != nil {
			return inst, err
		}
	}

	inst, err := sub.build(bd)
	if err != nil {
		return nil, err
	}

	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if r.c.closed {
		return nil, errors.Join(fmt.Errorf("%w: container", ErrContextClosed), release([]any{inst}))
	}
	r.c.instances[bd.key] = inst
	r.c.owned = append(r.c.owned, inst)
	return inst, nil
}

// build runs the factory and extenders of a binding.
func (r *resolution) build(bd *binding) (any, error) {
	r.stack = append(r.stack, bd.key)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	inst, err := bd.factory(r)
	if err != nil {
		return nil, fmt.Errorf("container: building [%s]: %w", bd.key, err)
	}
	for _, ext := range r.c.extenders[bd.key] {
		if inst, err = ext(inst, r); err != nil {
			return nil, fmt.Errorf("container: extending [%s]: %w", bd.key, err)
		}
	}
	for _, cb := range r.c.afterResolving {
		cb(bd.key, inst)
	}
	return inst, nil
}

// own records a closable instance for release with its scope, or with the
// container when built outside of one. Other instances are not tracked.
func (r *resolution) own(inst any) {
	if _, ok := inst.(io.Closer); !ok {
		return
	}
	if r.scope != nil {
		r.scope.owned = append(r.scope.owned, inst)
		return
	}
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	r.c.owned = append(r.c.owned, inst)
}

func (c *Container) cached(key string) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, fmt.Errorf("%w: container", ErrContextClosed)
	}
	inst, ok := c.instances[key]
	return inst, ok, nil
}
