package dispatch

import (
	"net/http"
	"time"

	coredispatch "github.com/kopong25/freightquick/core/dispatch"
	"github.com/kopong25/freightquick/core/logger"
	"github.com/kopong25/freightquick/core/model"
)

// NewMux wires the dispatch endpoints onto a ServeMux and returns the
// composed handler. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewMux(f *coredispatch.Facade, token string, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/drivers", NewDriversHandler(f))
	mux.Handle("/api/loads", NewLoadsHandler(f))
	mux.Handle("/api/assignments", NewAssignmentsHandler(f))
	mux.Handle("/api/assignments/export", NewExportHandler(f))
	mux.Handle("/api/matches", NewMatchesHandler(f))
	mux.Handle("/api/assign", NewAssignHandler(f))
	mux.Handle("/api/assignments/confirm", NewTransitionHandler(
		func(r *http.Request, id string) (model.Assignment, error) {
			return f.Confirm(r.Context(), id)
		}))
	mux.Handle("/api/assignments/complete", NewTransitionHandler(
		func(r *http.Request, id string) (model.Assignment, error) {
			return f.Complete(r.Context(), id)
		}))
	mux.Handle("/api/assignments/cancel", NewTransitionHandler(
		func(r *http.Request, id string) (model.Assignment, error) {
			return f.Cancel(r.Context(), id)
		}))
	mux.Handle("/api/routes", NewRoutesHandler(f))
	mux.Handle("/api/routes/optimize", NewOptimizeHandler(f))
	mux.Handle("/api/analytics", NewAnalyticsHandler(f))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	var h http.Handler = mux
	if token != "" {
		h = bearerAuth(token, h)
	}
	if log != nil {
		h = requestLog(log, h)
	}
	return h
}

func bearerAuth(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLog(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
