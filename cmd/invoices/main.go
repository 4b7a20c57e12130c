package main

import (
	"github.com/smallbiznis/invoicing/internal/cache"
	"github.com/smallbiznis/invoicing/internal/clock"
	"github.com/smallbiznis/invoicing/internal/config"
	"github.com/smallbiznis/invoicing/internal/invoice"
	"github.com/smallbiznis/invoicing/internal/migration"
	"github.com/smallbiznis/invoicing/internal/observability"
	"github.com/smallbiznis/invoicing/internal/ratelimit"
	"github.com/smallbiznis/invoicing/internal/server"
	"github.com/smallbiznis/invoicing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		// Core Infrastructure
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
		clock.Module,
		cache.Module,
		ratelimit.Module,

		invoice.Module,
		server.Module,
	)
	app.Run()
}
