package server

import "net/http"

// Router is a minimal mux with a middleware stack, backed by [http.ServeMux].
type Router struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouter creates an empty [Router].
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Use appends middleware to the stack. Middleware added first runs first.
func (r *Router) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers an http.Handler for the given path, wrapped with the
// registered middleware.
func (r *Router) Handle(path string, handler http.Handler) {
	r.mux.Handle(path, r.wrap(handler))
}

// Handler registers a [Handler] on every route it declares.
func (r *Router) Handler(handler Handler) {
	wrapped := r.wrap(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements http.Handler for the whole router.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// wrap applies the middleware stack, outermost first.
func (r *Router) wrap(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
