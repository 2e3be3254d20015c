package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ty-larkin/illumine/framework/container"
	ghttp "github.com/ty-larkin/illumine/framework/http"
)

// Type keys under which each request scope exposes the HTTP primitives.
// Handler parameters of these types resolve from the scope, not the bag.
var (
	writerKey   = container.TypeKey((*http.ResponseWriter)(nil))
	requestKey  = container.TypeKey((*http.Request)(nil))
	wrapReqKey  = container.TypeKey((*ghttp.Request)(nil))
	wrapRespKey = container.TypeKey((*ghttp.Response)(nil))
)

// ── Container-dispatched routes ──────────────────────────────────────────────

// Action registers a route dispatched through the application container —
// Laravel: Route::get('/users/{id}', [UserController::class, 'show']).
//
// The target is anything Call accepts: a "key@Method" string, a function, a
// receiver/method pair, or a Described value. Route parameters become the
// argument bag; the response writer, request, and their framework wrappers
// are bound into a per-request scope so parameters of those types inject
// by type. Scalar parameters match route params by name, which needs a
// DefineSignature (or Describe) declaring the names.
//
//	app.DefineSignature("users@Show", container.Param{Name: "id"})
//	r.Action(http.MethodGet, "/users/{id}", "users@Show")
func (r *Router) Action(method, pattern string, target any) {
	r.mux.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.dispatch(w, req, target)
	}))
}

// dispatch runs one Action request through the container Call pipeline.
func (r *Router) dispatch(w http.ResponseWriter, req *http.Request, target any) {
	res := ghttp.NewResponse(w)
	if r.app == nil {
		res.ServerError("routing: Action route on a router without a container")
		return
	}

	scope := r.app.Fork()
	scope.Instance(writerKey, w)
	scope.Instance(requestKey, req)
	scope.Instance(wrapReqKey, ghttp.NewRequest(req))
	scope.Instance(wrapRespKey, res)

	out, err := scope.Call(target, routeBag(req))
	if err != nil {
		res.ServerError(err.Error())
		return
	}
	if out != nil {
		res.Success(out)
	}
	// nil result: the handler wrote the response itself (or meant 200 empty).
}

// routeBag collects the matched URL parameters as an associative bag.
// Returns nil when the route has none so zero-param handlers take the
// no-arguments fast path.
func routeBag(req *http.Request) map[string]any {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}
	bag := make(map[string]any, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		if k == "*" {
			continue
		}
		bag[k] = rctx.URLParams.Values[i]
	}
	if len(bag) == 0 {
		return nil
	}
	return bag
}
