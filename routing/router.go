package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/km-arc/go-scoped/framework/container"
)

// Router wraps chi.Router and gives every request its own container scope.
type Router struct {
	mux chi.Router
}

// New creates a Router with Recoverer and ScopePerRequest installed.
func New(c *container.Container) *Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ScopePerRequest(c))
	return &Router{mux: r}
}

// ScopePerRequest opens a scope for each request, stores it in the request
// context and closes it once the handler returns, panics included.
func ScopePerRequest(c *container.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := c.Enter()
			if err != nil {
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			defer scope.Close()
			next.ServeHTTP(w, r.WithContext(container.NewContext(r.Context(), scope)))
		})
	}
}

// Scope returns the scope opened for the request. It panics when the
// request did not pass through ScopePerRequest.
func Scope(r *http.Request) *container.Scope {
	s, ok := container.FromContext(r.Context())
	if !ok {
		panic("routing: request has no container scope")
	}
	return s
}

// Param returns a URL parameter by name.
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's middleware.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Prefix creates a sub-router with a URL prefix.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
