package log

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// ChiMiddleware logs every request with the logger carried by ctx and makes that
// logger available to handlers through the request context.
func ChiMiddleware(ctx context.Context) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()
			reqCtx := With(CopyFromContext(ctx, r.Context()), "req-id", middleware.GetReqID(r.Context()))
			defer func() {
				Info(reqCtx,
					"http req",
					"method", r.Method,
					"uri", r.RequestURI,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"ua", r.Header.Get("User-Agent"),
					"d", time.Since(t1))
			}()
			next.ServeHTTP(ww, r.WithContext(reqCtx))
		}
		return http.HandlerFunc(fn)
	}
}
