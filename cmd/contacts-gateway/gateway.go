package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	jwtmiddleware "github.com/contactbook/go-jwt-middleware"
	"github.com/contactbook/go-jwt-middleware/config"
	"github.com/contactbook/go-jwt-middleware/jwks"
	"github.com/contactbook/go-jwt-middleware/validator"
)

const (
	tracerName      = "github.com/contactbook/go-jwt-middleware/cmd/contacts-gateway"
	requestIDHeader = "X-Request-ID"
)

type gateway struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *prometheus.Registry
	auth     *jwtmiddleware.JWTMiddleware
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.New()
	log.SetLevel(level)
	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}

func newGateway(cfg *config.Config, log *logrus.Logger) (*gateway, error) {
	issuerURL, err := url.Parse(cfg.IdP.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid IdP URL: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := jwtmiddleware.NewPrometheusMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	logger := jwtmiddleware.NewLogrusLogger(log)

	provider, err := jwks.NewProvider(
		jwks.WithIssuerURL(issuerURL),
		jwks.WithCacheTTL(cfg.IdP.CacheTTL),
		jwks.WithFetchTimeout(cfg.IdP.FetchTimeout),
		jwks.WithLogger(logger),
		jwks.WithFetchObserver(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the key provider: %w", err)
	}

	v, err := validator.New(
		validator.WithProvider(provider),
		validator.WithAudience(cfg.IdP.Audience),
		validator.WithAllowedClockSkew(cfg.IdP.ClockSkew),
		validator.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the validator: %w", err)
	}

	auth, err := jwtmiddleware.New(
		jwtmiddleware.WithValidator(v),
		jwtmiddleware.WithLogger(logger),
		jwtmiddleware.WithMetrics(metrics),
		jwtmiddleware.WithTracer(jwtmiddleware.NewOpenTelemetryTracer(otel.Tracer(tracerName))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the middleware: %w", err)
	}

	return &gateway{
		cfg:      cfg,
		log:      log,
		registry: registry,
		auth:     auth,
	}, nil
}

func (g *gateway) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(g.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: g.cfg.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Accept", "Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         3600,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(g.auth.CheckJWT)
		r.Get("/me", g.me)
	})

	return r
}

func (g *gateway) me(w http.ResponseWriter, r *http.Request) {
	claims, err := jwtmiddleware.GetClaims[*validator.Claims](r.Context())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(claims); err != nil {
		g.log.WithError(err).Warn("failed to write response")
	}
}

// requestLogger tags each request with an id and logs it once served.
func (g *gateway) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		g.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": r.RemoteAddr,
		}).Info("request served")
	})
}
