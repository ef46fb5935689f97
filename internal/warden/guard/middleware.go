package guard

import (
	"net/http"

	"github.com/wardenauth/warden/pkg/httpx"
)

// Middleware adapts a decision for one route into the shared middleware
// chain. The error mapper is supplied by the HTTP layer so the guard stays
// ignorant of status codes.
func (g *Guard) Middleware(meta RouteMeta, writeErr func(w http.ResponseWriter, err error)) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := g.Decide(r.Context(), r, meta)
			if err != nil {
				writeErr(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
