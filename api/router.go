// Package api exposes the survey metrics over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	apiaudit "github.com/kilianp07/ctr/api/audit"
	apisummary "github.com/kilianp07/ctr/api/summary"
	"github.com/kilianp07/ctr/core/events"
	"github.com/kilianp07/ctr/core/logger"
	coremon "github.com/kilianp07/ctr/core/monitoring"
	"github.com/kilianp07/ctr/internal/eventbus"
)

// Backend serves every route of the API.
type Backend interface {
	apisummary.Reporter
	apiaudit.Querier
}

// Options configures NewRouter.
type Options struct {
	// Token enables bearer authentication on /api routes when set.
	Token        string
	CORSOrigins  []string
	RankingLimit int
	Bus          eventbus.EventBus
	Log          logger.Logger
}

// NewRouter wires the API routes. /healthz is never authenticated.
func NewRouter(b Backend, opts Options) http.Handler {
	r := mux.NewRouter()
	r.Use(recoverMiddleware(opts.Log))
	r.Use(requestEvents(opts.Bus))
	r.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(bearerAuth(opts.Token))
	api.Handle("/cycles", apisummary.NewCyclesHandler(b)).Methods(http.MethodGet)
	api.Handle("/summary", apisummary.NewSummaryHandler(b)).Methods(http.MethodGet)
	api.Handle("/summary/export", apisummary.NewExportHandler(b)).Methods(http.MethodGet)
	api.Handle("/worksites", apisummary.NewWorksitesHandler(b, opts.RankingLimit)).Methods(http.MethodGet)
	api.Handle("/audit", apiaudit.NewLogHandler(b)).Methods(http.MethodGet)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         86400,
	})
	return c.Handler(r)
}

// Serve runs the API server until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler, readTimeout time.Duration, log logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil && log != nil {
			log.Errorf("api server shutdown: %v", err)
		}
		cancel()
	}()
	if log != nil {
		log.Infof("serving api on %s", addr)
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func bearerAuth(token string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Method != http.MethodOptions {
				got := []byte(r.Header.Get("Authorization"))
				if subtle.ConstantTimeCompare(got, []byte("Bearer "+token)) != 1 {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestEvents(bus eventbus.EventBus) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			if bus == nil {
				return
			}
			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			bus.Publish(events.RequestEvent{Route: route, Status: sw.status, Duration: time.Since(start)})
		})
	}
}

func recoverMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", rec)
					}
					if log != nil {
						log.Errorf("panic serving %s: %v", r.URL.Path, rec)
					}
					coremon.CaptureException(err, map[string]string{"module": "api", "path": r.URL.Path})
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
