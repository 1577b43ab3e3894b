package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	jwttoken "rentflow/internal/jwt_token"
	"rentflow/internal/marketplace/handler"
	marketmetrics "rentflow/internal/marketplace/metrics"
	"rentflow/internal/marketplace/models"
	"rentflow/internal/marketplace/service"
	"rentflow/internal/platform/clock"
	"rentflow/internal/platform/config"
	"rentflow/internal/platform/httpserver"
	"rentflow/internal/platform/logger"
	"rentflow/internal/platform/metrics"
	"rentflow/internal/platform/tracing"
	"rentflow/pkg/platform/httputil"
	"rentflow/pkg/platform/middleware/admin"
	"rentflow/pkg/platform/middleware/auth"
	"rentflow/pkg/platform/middleware/metadata"
	"rentflow/pkg/platform/middleware/ratelimit"
	"rentflow/pkg/platform/middleware/request"
	"rentflow/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the marketplace HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	log := logger.New(cfg.LogLevel)

	tp, err := tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to flush traces", "error", err)
		}
	}()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	authority, err := authorityFromConfig(cfg.Auth.Authorities)
	if err != nil {
		return err
	}
	if len(authority) == 0 {
		log.Warn("no authorities configured, registry commands will be refused")
	}

	reg := metrics.NewRegistry()
	clockSource, manual := clock.New(cfg.Clock)
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(marketmetrics.New(reg)),
		service.WithAuditPublisher(b.publisher),
		service.WithFunds(b.funds),
		service.WithLimits(models.Limits{
			MaxTenantsPerOffer:    cfg.Limits.MaxTenantsPerOffer,
			MaxOffersPerListing:   cfg.Limits.MaxOffersPerListing,
			MaxOffersPerApplicant: cfg.Limits.MaxOffersPerApplicant,
		}),
	}
	if manual != nil {
		opts = append(opts, service.WithClockControl(manual))
	}
	svc, err := service.New(b.tx, clockSource, authority, opts...)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.Server, newRouter(cfg, log, svc, reg, b.checks))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting rentflow",
			"addr", cfg.Server.Addr,
			"environment", cfg.Environment,
			"clock_mode", cfg.Clock.Mode,
			"postgres", cfg.Database.URL != "",
			"kafka", cfg.Kafka.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRouter(cfg config.Config, log *slog.Logger, svc *service.Service, reg *prometheus.Registry,
	checks map[string]func(ctx context.Context) error) http.Handler {
	limiter := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
	jwts := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	h := handler.New(svc, log)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", healthHandler(checks))
	r.Handle("/metrics", metrics.Handler(reg))

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware(log))
		r.Use(auth.RequireAuth(jwttoken.NewJWTServiceAdapter(jwts), log))
		if cfg.Server.CommandTimeout > 0 {
			r.Use(chimw.Timeout(cfg.Server.CommandTimeout))
		}
		h.Register(r)
		r.Group(func(r chi.Router) {
			if cfg.Auth.AdminToken != "" {
				r.Use(admin.RequireAdminToken(cfg.Auth.AdminToken, log))
			}
			h.RegisterAdmin(r)
		})
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
