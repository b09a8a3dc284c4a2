package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"rewards/internal/log"
)

// recoverer turns a handler panic into a generic 500 and logs it.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panicked",
				log.FieldPanic, fmt.Sprint(rec),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				"stack", string(debug.Stack()))

			if isAPI(r) {
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
				return
			}
			InternalServerError("Something went wrong. Please reload the page.").Write(w)
		}()
		next.ServeHTTP(w, r)
	})
}
