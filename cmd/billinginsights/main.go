package main

import (
	"time"

	"github.com/smallbiznis/billinginsights/internal/cache"
	"github.com/smallbiznis/billinginsights/internal/clock"
	"github.com/smallbiznis/billinginsights/internal/config"
	"github.com/smallbiznis/billinginsights/internal/migration"
	"github.com/smallbiznis/billinginsights/internal/observability"
	"github.com/smallbiznis/billinginsights/internal/seed"
	"github.com/smallbiznis/billinginsights/internal/server"
	"github.com/smallbiznis/billinginsights/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		clock.Module,
		db.Module,
		migration.Module,
		seed.Module,
		cache.Module,

		// Analytics API
		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.StopTimeout(15*time.Second),
	)
	app.Run()
}
