// Package requesttime pins one wall-clock "now" per request so audit
// records and log lines emitted by a command agree.
package requesttime

import (
	"net/http"
	"time"

	"rentflow/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
