package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"propmap/internal/config"
	"propmap/internal/i18n"
	"propmap/internal/logger"
	"propmap/internal/observability"
	"propmap/internal/pipeline"
)

// API serves the upload endpoints.
type API struct {
	pipe        *pipeline.Pipeline
	metrics     *observability.Metrics
	log         zerolog.Logger
	lang        i18n.Lang
	purchaseURL string
	maxUpload   int64
}

func NewAPI(cfg config.Config, pipe *pipeline.Pipeline, metrics *observability.Metrics, log zerolog.Logger) *API {
	return &API{
		pipe:        pipe,
		metrics:     metrics,
		log:         log,
		lang:        cfg.Lang,
		purchaseURL: cfg.PurchaseURL,
		maxUpload:   cfg.MaxUploadBytes,
	}
}

// Router wires routes and middleware.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(a.requestContext)
	r.Use(cors)

	r.Get("/healthz", liveness)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/parcels", a.handleParcel)
		r.Post("/maps/{variant}", a.handleMap)
	})
	return r
}

// requestContext attaches a request id and logger fields, then records the
// response status per route.
func (a *API) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
		w.Header().Set("X-Request-ID", logger.RequestID(ctx))
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		a.metrics.ObserveHTTP(route, status)
		logger.FromContext(ctx, &a.log).Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

// cors lets a browser front-end post uploads and read download headers.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Basemap-Status, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http listen")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
