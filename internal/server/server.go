package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/invoicing/internal/cache"
	"github.com/smallbiznis/invoicing/internal/config"
	"github.com/smallbiznis/invoicing/internal/invoice/action"
	invoicedomain "github.com/smallbiznis/invoicing/internal/invoice/domain"
	"github.com/smallbiznis/invoicing/internal/observability"
	obsmiddleware "github.com/smallbiznis/invoicing/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/invoicing/internal/observability/metrics"
	obstracing "github.com/smallbiznis/invoicing/internal/observability/tracing"
	"github.com/smallbiznis/invoicing/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	nav        *config.NavigationHolder
	actions    *action.Actions
	invoiceSvc invoicedomain.Service
	listing    *cache.ListingCache
	limiter    *ratelimit.SubmitLimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Navigation *config.NavigationHolder
	Actions    *action.Actions
	InvoiceSvc invoicedomain.Service
	Listing    *cache.ListingCache
	Limiter    *ratelimit.SubmitLimiter `optional:"true"`
	ObsMetrics *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		nav:        p.Navigation,
		actions:    p.Actions,
		invoiceSvc: p.InvoiceSvc,
		listing:    p.Listing,
		limiter:    p.Limiter,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerInvoiceRoutes()
	return svc
}

// registerInvoiceRoutes mounts the listing at the path configured at
// startup. Redirect targets and cache keys follow later reloads.
func (s *Server) registerInvoiceRoutes() {
	listing := s.engine.Group(s.nav.Get().ListingPath)
	listing.GET("", s.ListInvoices)

	submit := listing.Group("", s.SubmitRateLimit())
	submit.POST("", s.CreateInvoice)
	submit.POST("/:id/edit", s.UpdateInvoice)
	submit.POST("/:id/delete", s.DeleteInvoice)
}
