package httpx

import (
	"errors"
	"net/http"
)

var logger func(r *http.Request, err error)

// SetErrorLogger installs the hook Wrap and Recover use for server faults.
func SetErrorLogger(fn func(r *http.Request, err error)) { logger = fn }

// Recover turns a panic into a 500 JSON response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				if logger != nil {
					err, ok := v.(error)
					if !ok {
						err = errors.New("panic")
					}
					logger(r, err)
				}
				WriteError(w, http.StatusInternalServerError, nil, "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// NotFoundHandler answers unmatched routes with a JSON 404.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, ErrNotFound, r.URL.Path)
	})
}
